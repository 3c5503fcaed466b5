package analyses

import (
	"context"
	"errors"
	"strings"
	"testing"

	"legallens-backend/internal/clauses"
	"legallens-backend/internal/knowledge"
	"legallens-backend/internal/lookups"
	"legallens-backend/internal/risks"
)

func newTestService(t *testing.T) (*Service, *lookups.Service) {
	t.Helper()
	holder := knowledge.NewHolder(knowledge.EmbeddedSource{})
	if _, err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("load embedded knowledge: %v", err)
	}
	lk := lookups.NewService(lookups.NewMemoryRepo())
	return &Service{
		KB:       holder,
		Analyzer: risks.New(risks.DefaultSeverityTable()),
		Lookups:  lk,
	}, lk
}

func TestExplainNormalizesAndRecords(t *testing.T) {
	svc, lk := newTestService(t)
	ctx := context.Background()

	res, err := svc.Explain(ctx, "  Security Deposit ")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if res.MatchType != clauses.MatchExact || res.Clause != "security deposit" {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := svc.Explain(ctx, "zoning"); err != nil {
		t.Fatalf("explain: %v", err)
	}
	top, err := lk.Top(ctx, "", 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected two recorded lookups, got %+v", top)
	}
}

func TestExplainRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		input string
		want  error
	}{
		{"", ErrInvalidClause},
		{"   ", ErrInvalidClause},
		{strings.Repeat("a", 101), ErrInvalidClause},
		{`<>"'`, ErrEmptyClause},
	}
	for _, tc := range cases {
		if _, err := svc.Explain(ctx, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("input %q: expected %v, got %v", tc.input, tc.want, err)
		}
	}
	if _, err := svc.Explain(ctx, strings.Repeat("a", 100)); err != nil {
		t.Fatalf("100 chars should be accepted: %v", err)
	}
}

func TestExplainWithoutLookups(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Lookups = nil
	if _, err := svc.Explain(context.Background(), "eviction"); err != nil {
		t.Fatalf("explain: %v", err)
	}
}

func TestRisksSanitizesAndLowercases(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.Risks(context.Background(), "<b>EVICTION</b> may follow a LATE FEE.")
	if err != nil {
		t.Fatalf("risks: %v", err)
	}
	if res.TotalRisks != 2 {
		t.Fatalf("expected 2 risks, got %d", res.TotalRisks)
	}
	if res.RiskScore != "LOW" {
		t.Fatalf("expected LOW score, got %s", res.RiskScore)
	}
}

func TestRisksRejectsInvalidDocument(t *testing.T) {
	svc, _ := newTestService(t)
	for _, input := range []string{"", " \n ", strings.Repeat("x", MaxDocumentLength+1)} {
		if _, err := svc.Risks(context.Background(), input); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("expected ErrInvalidDocument, got %v", err)
		}
	}
}

func TestSummarizeKeepsCase(t *testing.T) {
	svc, _ := newTestService(t)
	sample, err := svc.Sample(context.Background())
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	res, err := svc.Summarize(context.Background(), sample)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(res.Summary, "Tenant") {
		t.Fatalf("expected original case in summary, got %q", res.Summary)
	}
}

func TestAnalyzeDocumentUsesOneSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	r, s, err := svc.AnalyzeDocument(context.Background(), "The security deposit is non-refundable. Eviction follows any breach.")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if r.TotalRisks == 0 {
		t.Fatalf("expected risks")
	}
	if s.OriginalWordCount == 0 {
		t.Fatalf("expected summary word count")
	}
}

func TestSampleMissing(t *testing.T) {
	svc, _ := newTestService(t)
	svc.KB = knowledge.NewHolder(nil)
	if _, err := svc.Sample(context.Background()); !errors.Is(err, ErrNoSample) {
		t.Fatalf("expected ErrNoSample, got %v", err)
	}
}

func TestOutcome(t *testing.T) {
	if got := Outcome(clauses.Result{MatchType: clauses.MatchPartial}); got != lookups.OutcomePartial {
		t.Fatalf("got %s", got)
	}
	if got := Outcome(clauses.Result{}); got != lookups.OutcomeNone {
		t.Fatalf("got %s", got)
	}
}
