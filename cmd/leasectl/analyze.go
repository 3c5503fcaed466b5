package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"legallens-backend/internal/analyses"
	"legallens-backend/internal/bootstrap"
	"legallens-backend/internal/clauses"
	"legallens-backend/internal/knowledge"
	"legallens-backend/internal/risks"
	"legallens-backend/internal/summary"
)

func newExplainCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <clause>",
		Short: "Explain a clause or legal term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := analysisService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			res, err := svc.Explain(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return inputError(err)
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printExplanation(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newRisksCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "risks [text]",
		Short: "Scan agreement text for risky clauses",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			svc, err := analysisService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			res, err := svc.Risks(cmd.Context(), text)
			if err != nil {
				return inputError(err)
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printRisks(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read agreement text from a file (- for stdin)")
	return cmd
}

func newSummarizeCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "summarize [text]",
		Short: "Summarize agreement text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			svc, err := analysisService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			res, err := svc.Summarize(cmd.Context(), text)
			if err != nil {
				return inputError(err)
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printSummary(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read agreement text from a file (- for stdin)")
	return cmd
}

// analysisService builds the same service the API uses. A --kb document
// replaces the configured source.
func analysisService(ctx context.Context, opts *options) (*analyses.Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.cfg
	if opts.kbPath != "" {
		cfg.KnowledgeSource = "file"
		cfg.KnowledgePath = opts.kbPath
	}
	store, err := bootstrap.BuildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	source, err := knowledge.NewSource(cfg.KnowledgeSource, cfg.KnowledgePath, store, nil)
	if err != nil {
		return nil, err
	}
	holder := knowledge.NewHolder(source)
	if _, err := holder.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load knowledge base from %s: %w", source.Name(), err)
	}
	return &analyses.Service{
		KB:       holder,
		Analyzer: risks.New(risks.SeverityTableFromConfig(cfg.HighSeverityKeywords)),
	}, nil
}

func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", errors.New("provide agreement text as arguments or with --file")
	}
}

func inputError(err error) error {
	switch {
	case errors.Is(err, analyses.ErrEmptyClause):
		return errors.New(analyses.MessageEmptyClause)
	case errors.Is(err, analyses.ErrInvalidClause):
		return errors.New(analyses.MessageInvalidClause)
	case errors.Is(err, analyses.ErrInvalidDocument):
		return errors.New(analyses.MessageInvalidDocument)
	default:
		return err
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func levelColor(level knowledge.Level) *color.Color {
	switch level {
	case knowledge.LevelHigh:
		return colorRed
	case knowledge.LevelMedium:
		return colorYellow
	default:
		return colorGreen
	}
}

func printExplanation(w io.Writer, res clauses.Result) {
	switch res.MatchType {
	case clauses.MatchExact:
		colorGreen.Fprintf(w, "%s (exact match)\n", res.Clause)
	case clauses.MatchPartial:
		colorYellow.Fprintf(w, "%s (partial match)\n", res.Clause)
	default:
		colorRed.Fprintln(w, "No match")
	}
	fmt.Fprintf(w, "  %s\n", res.Explanation)

	keys := make([]string, 0, len(res.AdditionalInfo))
	for k, v := range res.AdditionalInfo {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		colorCyan.Fprintf(w, "  %s: ", strings.ReplaceAll(k, "_", " "))
		fmt.Fprintln(w, res.AdditionalInfo[k])
	}
	if len(res.Suggestions) > 0 {
		fmt.Fprintf(w, "  see also: %s\n", strings.Join(res.Suggestions, ", "))
	}
}

func printRisks(w io.Writer, res risks.Result) {
	colorBold.Fprint(w, "Risk score: ")
	levelColor(res.RiskScore).Fprintf(w, "%s", res.RiskScore)
	fmt.Fprintf(w, " (%d risks)\n", res.TotalRisks)
	if res.Message != "" {
		fmt.Fprintf(w, "  %s\n", res.Message)
	}
	for _, g := range res.RiskCategories {
		levelColor(g.Severity).Fprintf(w, "\n%s [%s] ", g.Category, g.Severity)
		fmt.Fprintf(w, "%d found\n", g.Count)
		for _, f := range g.Risks {
			fmt.Fprintf(w, "  - %s (%s): %s\n", f.Keyword, f.Severity, f.Description)
		}
	}
	if len(res.MissingClauses) > 0 {
		colorYellow.Fprintln(w, "\nMissing important clauses:")
		for _, c := range res.MissingClauses {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	}
}

func printSummary(w io.Writer, res summary.Result) {
	fmt.Fprintln(w, res.Summary)
	colorCyan.Fprintf(w, "\n%d words -> %d words (%s)\n", res.OriginalWordCount, res.SummaryWordCount, res.Mode)
}
