// Package admin lets operators reload or replace the knowledge base at runtime.
package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"legallens-backend/internal/knowledge"
	"legallens-backend/internal/queue"
	"legallens-backend/internal/shared/metrics"
	"legallens-backend/internal/shared/storage/object"
	"legallens-backend/internal/shared/telemetry"
)

var (
	ErrStoreNotConfigured = errors.New("knowledge object store not configured")
	ErrInvalidDocument    = errors.New("invalid knowledge document")
)

// Status describes the active knowledge base after an admin action.
type Status struct {
	Source            string    `json:"source"`
	Version           string    `json:"knowledge_version"`
	ExplanationsCount int       `json:"explanations_count"`
	LoadedAt          time.Time `json:"loaded_at"`
	Notified          bool      `json:"notified"`
}

// Service performs knowledge base maintenance.
type Service struct {
	Holder *knowledge.Holder
	Store  object.ObjectStore
	// Key is where uploaded documents are written.
	Key string
	// Notifier, when set, tells other processes to reload.
	Notifier queue.Client
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(holder *knowledge.Holder, store object.ObjectStore, key string, notifier queue.Client) *Service {
	return &Service{Holder: holder, Store: store, Key: strings.TrimSpace(key), Notifier: notifier, now: time.Now}
}

// Reload re-reads the configured source and broadcasts a notification.
func (s *Service) Reload(ctx context.Context, requestID string) (Status, error) {
	_, err := s.Holder.Reload(ctx)
	metrics.IncReload(err)
	if err != nil {
		return Status{}, err
	}
	return s.status(ctx, requestID), nil
}

// Publish validates a document, stores it under Key and activates it.
func (s *Service) Publish(ctx context.Context, data []byte, requestID string) (Status, error) {
	if s.Store == nil || s.Key == "" {
		return Status{}, ErrStoreNotConfigured
	}
	format := knowledge.FormatFor(s.Key)
	base, err := knowledge.Parse(data, format)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if base.Len() == 0 {
		return Status{}, fmt.Errorf("%w: no explanations", ErrInvalidDocument)
	}

	contentType := "application/json"
	if format == knowledge.FormatYAML {
		contentType = "application/yaml"
	}
	if _, err := s.Store.SaveWithKey(ctx, s.Key, contentType, bytes.NewReader(data)); err != nil {
		return Status{}, fmt.Errorf("store knowledge document: %w", err)
	}

	// Reload through the source when it reads the stored object; otherwise
	// install the validated document directly.
	if s.Holder.SourceName() == (knowledge.ObjectSource{Key: s.Key}).Name() {
		_, err = s.Holder.Reload(ctx)
		metrics.IncReload(err)
		if err != nil {
			return Status{}, err
		}
	} else {
		s.Holder.Swap(base)
	}
	telemetry.Info("admin.knowledge_published", map[string]any{
		"key":        s.Key,
		"version":    base.Version(),
		"request_id": requestID,
	})
	return s.status(ctx, requestID), nil
}

// Export encodes the active knowledge base as JSON.
func (s *Service) Export() ([]byte, error) {
	return knowledge.Encode(s.Holder.Current())
}

func (s *Service) status(ctx context.Context, requestID string) Status {
	kb := s.Holder.Current()
	st := Status{
		Source:            s.Holder.SourceName(),
		Version:           kb.Version(),
		ExplanationsCount: kb.Len(),
		LoadedAt:          s.Holder.LoadedAt(),
	}
	if s.Notifier != nil {
		now := time.Now
		if s.now != nil {
			now = s.now
		}
		if err := s.Notifier.Send(ctx, queue.NewReloadMessage("admin", requestID, now())); err != nil {
			telemetry.Warn("admin.notify_failed", map[string]any{"error": err.Error(), "request_id": requestID})
		} else {
			st.Notified = true
		}
	}
	return st
}
