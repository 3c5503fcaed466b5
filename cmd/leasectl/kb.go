package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"legallens-backend/internal/bootstrap"
	"legallens-backend/internal/knowledge"
	"legallens-backend/internal/queue"
	"legallens-backend/internal/shared/storage/db"
)

func newKBCmd(opts *options) *cobra.Command {
	kb := &cobra.Command{
		Use:   "kb",
		Short: "Validate, import and publish knowledge base documents",
	}
	kb.AddCommand(newKBValidateCmd(opts), newKBImportCmd(opts), newKBPublishCmd(opts))
	return kb
}

func newKBValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse a knowledge document and report problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			warnings := lint(base)
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"explanations":    base.Len(),
					"risk_categories": len(base.Categories()),
					"risk_keywords":   base.KeywordCount(),
					"version":         base.Version(),
					"warnings":        warnings,
				})
			}
			w := cmd.OutOrStdout()
			colorGreen.Fprintf(w, "%s is valid\n", args[0])
			fmt.Fprintf(w, "  explanations: %d\n  risk categories: %d\n  risk keywords: %d\n  version: %s\n",
				base.Len(), len(base.Categories()), base.KeywordCount(), base.Version())
			for _, warning := range warnings {
				colorYellow.Fprintf(w, "  warning: %s\n", warning)
			}
			return nil
		},
	}
}

func newKBImportCmd(opts *options) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the Postgres knowledge tables with a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(opts.cfg.DatabaseURL) == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			ctx := cmd.Context()
			sqlDB, err := db.Connect(ctx, opts.cfg.DatabaseURL, db.OptionsFor(db.ProfileMigrate))
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			if migrate {
				if err := db.RunMigrations(ctx, sqlDB); err != nil {
					return err
				}
			}
			if err := (&knowledge.PGStore{DB: sqlDB}).Replace(ctx, base); err != nil {
				return err
			}
			colorGreen.Fprintf(cmd.OutOrStdout(), "imported %d explanations (version %s)\n", base.Len(), base.Version())
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations first")
	return cmd
}

func newKBPublishCmd(opts *options) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Upload a document to the object store and notify running servers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, data, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			if key == "" {
				key = opts.cfg.KnowledgePath
			}
			if strings.TrimSpace(key) == "" {
				return fmt.Errorf("--key or KNOWLEDGE_PATH is required")
			}
			if knowledge.FormatFor(key) != knowledge.FormatFor(args[0]) {
				return fmt.Errorf("key %s and file %s use different formats", key, args[0])
			}

			ctx := cmd.Context()
			store, err := bootstrap.BuildStore(ctx, opts.cfg)
			if err != nil {
				return err
			}
			n, err := store.SaveWithKey(ctx, key, contentTypeFor(key), bytes.NewReader(data))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			colorGreen.Fprintf(w, "published %s (%d bytes, version %s)\n", key, n, base.Version())

			client, err := bootstrap.BuildQueue(ctx, opts.cfg)
			if err != nil {
				return err
			}
			if client == nil {
				colorYellow.Fprintln(w, "RA_SQS_QUEUE_URL not set; servers pick up the document on their next reload")
				return nil
			}
			if err := client.Send(ctx, queue.NewReloadMessage(appName, "", time.Now())); err != nil {
				return fmt.Errorf("send reload notification: %w", err)
			}
			fmt.Fprintln(w, "reload notification sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "object key to write (default KNOWLEDGE_PATH)")
	return cmd
}

func loadDocument(path string) (*knowledge.Base, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	base, err := knowledge.Parse(data, knowledge.FormatFor(path))
	if err != nil {
		return nil, nil, err
	}
	if base.Len() == 0 {
		return nil, nil, fmt.Errorf("%s has no explanations", path)
	}
	return base, data, nil
}

// lint reports entries that load but degrade analysis.
func lint(base *knowledge.Base) []string {
	warnings := []string{}
	for _, e := range base.Entries() {
		rec, ok := e.Explanation.(knowledge.StructuredRecord)
		if !ok {
			continue
		}
		if rec.Definition == "" {
			warnings = append(warnings, fmt.Sprintf("explanation %q has no definition", e.Key))
		}
		if rec.Importance != "" {
			if _, ok := rec.ImportanceLevel(); !ok {
				warnings = append(warnings, fmt.Sprintf("explanation %q has unknown importance %q", e.Key, rec.Importance))
			}
		}
	}
	for _, c := range base.Categories() {
		if _, ok := knowledge.ParseLevel(c.Severity); !ok {
			warnings = append(warnings, fmt.Sprintf("risk category %q has unknown severity %q", c.Name, c.Severity))
		}
		if len(c.Keywords) == 0 {
			warnings = append(warnings, fmt.Sprintf("risk category %q has no keywords", c.Name))
		}
		for _, kw := range c.Keywords {
			if _, ok := base.Lookup(kw); !ok {
				warnings = append(warnings, fmt.Sprintf("keyword %q has no explanation", kw))
			}
		}
	}
	return warnings
}

func contentTypeFor(key string) string {
	if knowledge.FormatFor(key) == knowledge.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}
