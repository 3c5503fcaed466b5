package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	kindPlain      = "plain"
	kindStructured = "structured"
)

// PGStore reads and writes a knowledge base in Postgres.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Name() string { return "postgres" }

// Load reads the full knowledge base.
func (s *PGStore) Load(ctx context.Context) (*Base, error) {
	var c Contents

	rows, err := s.DB.QueryContext(ctx, `
SELECT key, kind, definition, importance, category, typical_amount, refund_conditions,
       typical_penalty, notice_period, penalties
FROM knowledge_explanations
ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query explanations: %w", err)
	}
	for rows.Next() {
		var (
			key, kind, definition                sql.NullString
			importance, category, amount, refund sql.NullString
			penalty, notice, penalties           sql.NullString
		)
		if err := rows.Scan(&key, &kind, &definition, &importance, &category, &amount, &refund, &penalty, &notice, &penalties); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan explanation: %w", err)
		}
		var exp Explanation
		if kind.String == kindPlain {
			exp = PlainDefinition(definition.String)
		} else {
			exp = StructuredRecord{
				Definition:       definition.String,
				Importance:       importance.String,
				Category:         category.String,
				TypicalAmount:    amount.String,
				RefundConditions: refund.String,
				TypicalPenalty:   penalty.String,
				NoticePeriod:     notice.String,
				Penalties:        penalties.String,
			}
		}
		c.Explanations = append(c.Explanations, Entry{Key: key.String, Explanation: exp})
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("read explanations: %w", err)
	}

	rows, err = s.DB.QueryContext(ctx, `
SELECT name, description, severity
FROM knowledge_risk_categories
ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query risk categories: %w", err)
	}
	index := map[string]int{}
	for rows.Next() {
		var name string
		var description, severity sql.NullString
		if err := rows.Scan(&name, &description, &severity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan risk category: %w", err)
		}
		index[name] = len(c.RiskCategories)
		c.RiskCategories = append(c.RiskCategories, RiskCategory{
			Name:        name,
			Description: description.String,
			Severity:    severity.String,
		})
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("read risk categories: %w", err)
	}

	rows, err = s.DB.QueryContext(ctx, `
SELECT category, keyword
FROM knowledge_risk_keywords
ORDER BY category, position`)
	if err != nil {
		return nil, fmt.Errorf("query risk keywords: %w", err)
	}
	for rows.Next() {
		var category, keyword string
		if err := rows.Scan(&category, &keyword); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan risk keyword: %w", err)
		}
		if idx, ok := index[category]; ok {
			c.RiskCategories[idx].Keywords = append(c.RiskCategories[idx].Keywords, keyword)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("read risk keywords: %w", err)
	}

	rows, err = s.DB.QueryContext(ctx, `SELECT phrase FROM knowledge_important_clauses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query important clauses: %w", err)
	}
	for rows.Next() {
		var phrase string
		if err := rows.Scan(&phrase); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan important clause: %w", err)
		}
		c.ImportantClauses = append(c.ImportantClauses, phrase)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("read important clauses: %w", err)
	}

	var sample sql.NullString
	err = s.DB.QueryRowContext(ctx, `SELECT sample_agreement FROM knowledge_meta WHERE id = 1`).Scan(&sample)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query knowledge meta: %w", err)
	}
	c.SampleAgreement = sample.String

	return New(c), nil
}

// Replace overwrites the stored knowledge base with b in a single transaction.
func (s *PGStore) Replace(ctx context.Context, b *Base) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM knowledge_risk_keywords`,
		`DELETE FROM knowledge_risk_categories`,
		`DELETE FROM knowledge_explanations`,
		`DELETE FROM knowledge_important_clauses`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear knowledge: %w", err)
		}
	}

	for i, e := range b.Entries() {
		kind := kindStructured
		var rec StructuredRecord
		switch exp := e.Explanation.(type) {
		case PlainDefinition:
			kind = kindPlain
			rec.Definition = string(exp)
		case StructuredRecord:
			rec = exp
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO knowledge_explanations (
	key, position, kind, definition, importance, category, typical_amount,
	refund_conditions, typical_penalty, notice_period, penalties
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			e.Key, i, kind, rec.Definition,
			nullIfEmpty(rec.Importance), nullIfEmpty(rec.Category), nullIfEmpty(rec.TypicalAmount),
			nullIfEmpty(rec.RefundConditions), nullIfEmpty(rec.TypicalPenalty),
			nullIfEmpty(rec.NoticePeriod), nullIfEmpty(rec.Penalties),
		); err != nil {
			return fmt.Errorf("insert explanation %q: %w", e.Key, err)
		}
	}

	for i, c := range b.Categories() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO knowledge_risk_categories (name, position, description, severity)
VALUES ($1, $2, $3, $4)`, c.Name, i, c.Description, c.Severity); err != nil {
			return fmt.Errorf("insert risk category %q: %w", c.Name, err)
		}
		for j, kw := range c.Keywords {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO knowledge_risk_keywords (category, position, keyword)
VALUES ($1, $2, $3)`, c.Name, j, kw); err != nil {
				return fmt.Errorf("insert risk keyword %q: %w", kw, err)
			}
		}
	}

	for i, phrase := range b.ImportantClauses() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO knowledge_important_clauses (position, phrase)
VALUES ($1, $2)`, i, phrase); err != nil {
			return fmt.Errorf("insert important clause %q: %w", phrase, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO knowledge_meta (id, sample_agreement, updated_at)
VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE SET sample_agreement = EXCLUDED.sample_agreement, updated_at = EXCLUDED.updated_at`,
		b.SampleAgreement(), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert knowledge meta: %w", err)
	}

	return tx.Commit()
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
