package analyses

import (
	"context"
	"strings"
	"time"

	"legallens-backend/internal/clauses"
	"legallens-backend/internal/knowledge"
	"legallens-backend/internal/lookups"
	"legallens-backend/internal/risks"
	"legallens-backend/internal/shared/metrics"
	"legallens-backend/internal/shared/telemetry"
	"legallens-backend/internal/shared/util"
	"legallens-backend/internal/summary"
)

// Service validates and normalizes input, then runs the engines against the
// current knowledge base. Each call reads the knowledge base once.
type Service struct {
	KB       *knowledge.Holder
	Analyzer *risks.Analyzer
	Lookups  *lookups.Service
}

// Explain resolves a clause or legal term.
func (s *Service) Explain(ctx context.Context, clause string) (clauses.Result, error) {
	if err := util.ValidateText(clause, MaxClauseLength); err != nil {
		metrics.IncRejected()
		return clauses.Result{}, ErrInvalidClause
	}
	query := strings.ToLower(util.SanitizeText(clause))
	if query == "" {
		metrics.IncRejected()
		return clauses.Result{}, ErrEmptyClause
	}

	start := time.Now()
	res, err := clauses.Match(s.KB.Current(), query)
	if err != nil {
		return clauses.Result{}, ErrEmptyClause
	}
	metrics.ObserveAnalysisDurationMs(metrics.Since(start))
	metrics.IncExplain(res.Matched())

	if err := s.Lookups.Record(ctx, query, Outcome(res)); err != nil {
		telemetry.Warn("lookups.record_failed", map[string]any{"query": query, "error": err.Error()})
	}
	return res, nil
}

// Risks scans a document for risk keywords.
func (s *Service) Risks(ctx context.Context, docText string) (risks.Result, error) {
	text, err := s.normalizeDocument(docText)
	if err != nil {
		return risks.Result{}, err
	}
	start := time.Now()
	res := s.analyzer().Analyze(s.KB.Current(), strings.ToLower(text))
	metrics.ObserveAnalysisDurationMs(metrics.Since(start))
	metrics.IncRisks()
	return res, nil
}

// Summarize builds an extractive summary. Case is preserved.
func (s *Service) Summarize(ctx context.Context, docText string) (summary.Result, error) {
	text, err := s.normalizeDocument(docText)
	if err != nil {
		return summary.Result{}, err
	}
	start := time.Now()
	res := summary.Summarize(text)
	metrics.ObserveAnalysisDurationMs(metrics.Since(start))
	metrics.IncSummarize()
	return res, nil
}

// AnalyzeDocument runs risks and summary over already extracted text against
// a single knowledge base snapshot.
func (s *Service) AnalyzeDocument(ctx context.Context, docText string) (risks.Result, summary.Result, error) {
	text, err := s.normalizeDocument(docText)
	if err != nil {
		return risks.Result{}, summary.Result{}, err
	}
	kb := s.KB.Current()
	start := time.Now()
	r := s.analyzer().Analyze(kb, strings.ToLower(text))
	sum := summary.Summarize(text)
	metrics.ObserveAnalysisDurationMs(metrics.Since(start))
	metrics.IncDocuments()
	return r, sum, nil
}

// Sample returns the sample rental agreement bundled with the knowledge base.
func (s *Service) Sample(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sample := s.KB.Current().SampleAgreement()
	if strings.TrimSpace(sample) == "" {
		return "", ErrNoSample
	}
	return sample, nil
}

func (s *Service) normalizeDocument(docText string) (string, error) {
	if err := util.ValidateText(docText, MaxDocumentLength); err != nil {
		metrics.IncRejected()
		return "", ErrInvalidDocument
	}
	return util.SanitizeText(docText), nil
}

func (s *Service) analyzer() *risks.Analyzer {
	if s.Analyzer == nil {
		return &risks.Analyzer{}
	}
	return s.Analyzer
}

// Outcome maps a match result to the lookup outcome it is recorded under.
func Outcome(res clauses.Result) string {
	switch res.MatchType {
	case clauses.MatchExact:
		return lookups.OutcomeExact
	case clauses.MatchPartial:
		return lookups.OutcomePartial
	default:
		return lookups.OutcomeNone
	}
}
