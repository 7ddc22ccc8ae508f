package notifier

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// CommandHandler answers a command; an empty reply sends nothing.
type CommandHandler func(ctx context.Context, command string) string

// pollTimeout is the long-poll wait in seconds, kept under the client timeout.
const pollTimeout = 25

// StartPolling long-polls Telegram for commands from the configured chat and
// answers them. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := int64(0)

	for {
		if ctx.Err() != nil {
			log.Info().Msg("telegram polling stopped")
			return
		}

		resp, err := t.Client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"offset":  strconv.FormatInt(offset, 10),
				"timeout": strconv.Itoa(pollTimeout),
			}).
			Get(t.method("getUpdates"))
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Warn().Err(err).Msg("polling request failed")
			sleep(ctx, 5*time.Second)
			continue
		}
		if resp.StatusCode() != 200 {
			log.Warn().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("polling rejected")
			sleep(ctx, 5*time.Second)
			continue
		}

		for _, cmd := range parseUpdates(resp.Body(), t.ChatID) {
			offset = cmd.updateID + 1
			if cmd.text == "" {
				continue
			}
			log.Info().Str("command", cmd.text).Msg("received command")
			if reply := handler(ctx, cmd.text); reply != "" {
				if err := t.Send(ctx, reply); err != nil {
					log.Error().Err(err).Msg("send reply")
				}
			}
		}
	}
}

type update struct {
	updateID int64
	text     string
}

// parseUpdates returns every update so the offset advances, with text
// cleared for messages from other chats.
func parseUpdates(body []byte, chatID string) []update {
	if !gjson.GetBytes(body, "ok").Bool() {
		log.Warn().Str("body", string(body)).Msg("unexpected polling response")
		return nil
	}
	var out []update
	gjson.GetBytes(body, "result").ForEach(func(_, u gjson.Result) bool {
		up := update{updateID: u.Get("update_id").Int()}
		msg := u.Get("message")
		if msg.Get("chat.id").String() == chatID {
			up.text = strings.TrimSpace(msg.Get("text").String())
		} else if msg.Exists() {
			log.Warn().Str("chat_id", msg.Get("chat.id").String()).Msg("ignoring message from unknown chat")
		}
		out = append(out, up)
		return true
	})
	return out
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
