package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"UpriseScanner/internal/model"
	"UpriseScanner/internal/scanner"
)

// SQLiteRecorder persists runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			run_id      TEXT PRIMARY KEY,
			provider    TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			candidates  INTEGER,
			emitted     INTEGER,
			rejected    INTEGER,
			partial     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS scan_results (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES scan_runs(run_id),
			code        TEXT NOT NULL,
			name        TEXT,
			as_of       TEXT,
			close       REAL,
			macd_line   REAL,
			macd_signal REAL,
			rsi         REAL,
			slow_k      REAL,
			slow_d      REAL,
			obv         REAL,
			score       REAL,
			verdict     TEXT,
			breakout    INTEGER,
			factors     TEXT,
			gate_trail  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON scan_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_code ON scan_results(code)`,

		`CREATE TABLE IF NOT EXISTS scan_rejections (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES scan_runs(run_id),
			code       TEXT NOT NULL,
			name       TEXT,
			stage      TEXT,
			reason     TEXT,
			detail     TEXT,
			gate_trail TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rejections_run ON scan_rejections(run_id)`,

		`CREATE TABLE IF NOT EXISTS analyses (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			code      TEXT NOT NULL,
			as_of     TEXT,
			bars      INTEGER,
			score     REAL,
			verdict   TEXT,
			breakout  INTEGER,
			factors   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_code ON analyses(code)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps an undefined indicator to SQL NULL.
func nullable(v model.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.V, Valid: v.Valid}
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RecordRun stores a run with its results and rejections in one transaction.
func (r *SQLiteRecorder) RecordRun(report *scanner.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO scan_runs
		(run_id, provider, started_at, finished_at, candidates, emitted, rejected, partial)
		VALUES (?,?,?,?,?,?,?,?)`,
		report.RunID, report.Provider, report.StartedAt.Unix(), report.FinishedAt.Unix(),
		report.Candidates, len(report.Results), len(report.Rejected), report.Partial,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, res := range report.Results {
		factors, err := toJSON(res.Factors)
		if err != nil {
			return fmt.Errorf("encode factors %s: %w", res.Code, err)
		}
		trail, err := toJSON(res.GateTrail)
		if err != nil {
			return fmt.Errorf("encode gate trail %s: %w", res.Code, err)
		}
		l := res.Latest
		_, err = tx.Exec(`INSERT INTO scan_results
			(run_id, code, name, as_of, close, macd_line, macd_signal, rsi, slow_k, slow_d, obv,
			 score, verdict, breakout, factors, gate_trail)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			report.RunID, res.Code, res.Name, res.AsOf.Format(model.DateLayout), l.Close,
			nullable(l.MACDLine), nullable(l.MACDSignal), nullable(l.RSI),
			nullable(l.SlowK), nullable(l.SlowD), nullable(l.OBV),
			res.Score, res.Verdict.String(), res.Breakout, factors, trail,
		)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", res.Code, err)
		}
	}

	for _, rej := range report.Rejected {
		trail, err := toJSON(rej.GateTrail)
		if err != nil {
			return fmt.Errorf("encode gate trail %s: %w", rej.Code, err)
		}
		_, err = tx.Exec(`INSERT INTO scan_rejections
			(run_id, code, name, stage, reason, detail, gate_trail)
			VALUES (?,?,?,?,?,?,?)`,
			report.RunID, rej.Code, rej.Name, rej.Stage, rej.Reason, rej.Detail, trail,
		)
		if err != nil {
			return fmt.Errorf("insert rejection %s: %w", rej.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", report.RunID, err)
	}
	log.Debug().Str("run_id", report.RunID).Int("results", len(report.Results)).Msg("run recorded")
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(a *scanner.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	factors, err := toJSON(a.Signal.Factors)
	if err != nil {
		return fmt.Errorf("encode factors %s: %w", a.Code, err)
	}
	_, err = r.db.Exec(`INSERT INTO analyses
		(timestamp, code, as_of, bars, score, verdict, breakout, factors)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), a.Code, a.AsOf.Format(model.DateLayout), a.Bars,
		a.Signal.Score, a.Signal.Verdict.String(), a.Breakout, factors,
	)
	return err
}

// RecentRuns lists the newest runs first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT run_id, provider, started_at, finished_at, candidates, emitted, rejected, partial
		FROM scan_runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			s                 RunSummary
			started, finished int64
		)
		if err := rows.Scan(&s.RunID, &s.Provider, &started, &finished,
			&s.Candidates, &s.Emitted, &s.Rejected, &s.Partial); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.Unix(started, 0)
		s.FinishedAt = time.Unix(finished, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
