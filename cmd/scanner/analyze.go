package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"UpriseScanner/internal/notifier"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the technical report for one instrument",
	RunE:  runAnalyze,
}

var fundamentalsCmd = &cobra.Command{
	Use:   "fundamentals",
	Short: "Print the financial health report for one instrument",
	RunE:  runFundamentals,
}

var (
	analyzeCode      string
	fundamentalsCode string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCode, "code", "", "instrument code, e.g. 005930")
	_ = analyzeCmd.MarkFlagRequired("code")
	fundamentalsCmd.Flags().StringVar(&fundamentalsCode, "code", "", "instrument code, e.g. 005930")
	_ = fundamentalsCmd.MarkFlagRequired("code")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p, _, err := buildSources(cfg)
	if err != nil {
		return err
	}
	a, err := newPipeline(cfg, p).Analyze(cmd.Context(), analyzeCode)
	if err != nil {
		return err
	}

	rec := openRecorder(cfg)
	defer rec.Close()
	if err := rec.RecordAnalysis(a); err != nil {
		log.Error().Err(err).Str("code", a.Code).Msg("record analysis")
	}
	return notifier.RenderAnalysis(cmd.OutOrStdout(), a)
}

func runFundamentals(cmd *cobra.Command, args []string) error {
	p, _, err := buildSources(cfg)
	if err != nil {
		return err
	}
	h, err := newPipeline(cfg, p).AssessHealth(cmd.Context(), fundamentalsCode)
	if err != nil {
		return err
	}
	return notifier.RenderHealth(cmd.OutOrStdout(), h)
}
