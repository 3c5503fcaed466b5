package health

import (
	"context"
	"time"

	"legallens-backend/internal/knowledge"
)

// Report is the health payload. Counts describe the active knowledge base.
type Report struct {
	Status              string     `json:"status"`
	DataLoaded          bool       `json:"data_loaded"`
	ExplanationsCount   int        `json:"explanations_count"`
	RiskyKeywordsCount  int        `json:"risky_keywords_count"`
	RiskCategoriesCount int        `json:"risk_categories_count"`
	KnowledgeVersion    string     `json:"knowledge_version"`
	KnowledgeSource     string     `json:"knowledge_source"`
	LoadedAt            *time.Time `json:"loaded_at"`
	Database            string     `json:"database"`
}

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	KB *knowledge.Holder
	DB Pinger
}

// NewService constructs a new health service. db may be nil.
func NewService(kb *knowledge.Holder, db Pinger) *Service {
	return &Service{KB: kb, DB: db}
}

// Status reports liveness plus a snapshot of the knowledge base. The service
// stays healthy with an empty knowledge base; data_loaded tells them apart.
func (s *Service) Status(ctx context.Context) Report {
	r := Report{Status: "healthy", Database: "disabled"}
	if s == nil {
		return r
	}
	if s.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			r.Database = "unavailable"
		} else {
			r.Database = "ok"
		}
	}
	if s.KB == nil {
		return r
	}
	kb := s.KB.Current()
	r.DataLoaded = kb.Len() > 0
	r.ExplanationsCount = kb.Len()
	r.RiskyKeywordsCount = kb.KeywordCount()
	r.RiskCategoriesCount = len(kb.Categories())
	r.KnowledgeVersion = kb.Version()
	r.KnowledgeSource = s.KB.SourceName()
	if at := s.KB.LoadedAt(); !at.IsZero() {
		r.LoadedAt = &at
	}
	return r
}
