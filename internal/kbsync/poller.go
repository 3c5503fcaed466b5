// Package kbsync reloads the knowledge base when a notification arrives on SQS.
package kbsync

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"legallens-backend/internal/knowledge"
	"legallens-backend/internal/queue"
	"legallens-backend/internal/shared/metrics"
	"legallens-backend/internal/shared/telemetry"
)

const (
	defaultWaitSeconds = 20
	defaultBatchSize   = 10
	defaultBackoff     = 5 * time.Second
)

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Reloader is satisfied by *knowledge.Holder.
type Reloader interface {
	Reload(ctx context.Context) (*knowledge.Base, error)
}

// Poller long-polls a queue and reloads the knowledge base once per batch
// that carries at least one reload notification.
type Poller struct {
	Client      sqsAPI
	QueueURL    string
	Reloader    Reloader
	WaitSeconds int32
	Backoff     time.Duration
}

// New constructs a Poller with default polling settings.
func New(client sqsAPI, queueURL string, reloader Reloader) *Poller {
	return &Poller{
		Client:      client,
		QueueURL:    queueURL,
		Reloader:    reloader,
		WaitSeconds: defaultWaitSeconds,
		Backoff:     defaultBackoff,
	}
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	telemetry.Info("kbsync.started", map[string]any{"queue_url": p.QueueURL})
	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := p.PollOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			telemetry.Warn("kbsync.receive_failed", map[string]any{"error": err.Error()})
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.Backoff):
			}
		}
	}
}

// PollOnce receives one batch and handles it. It returns how many messages
// were deleted.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	resp, err := p.Client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(p.QueueURL),
		MaxNumberOfMessages: defaultBatchSize,
		WaitTimeSeconds:     p.WaitSeconds,
	})
	if err != nil {
		return 0, err
	}
	return p.Handle(ctx, resp.Messages), nil
}

// Handle processes a received batch. Messages that are not reload
// notifications are dropped. Reload notifications are deleted only after a
// successful reload so a failure is retried on redelivery.
func (p *Poller) Handle(ctx context.Context, msgs []sqstypes.Message) int {
	var reloads []sqstypes.Message
	deleted := 0
	for _, m := range msgs {
		body := aws.ToString(m.Body)
		msg, err := queue.DecodeMessage([]byte(body))
		switch {
		case err != nil:
			telemetry.Warn("kbsync.message_invalid", map[string]any{
				"message_id": aws.ToString(m.MessageId),
				"body_len":   len(body),
				"error":      err.Error(),
			})
		case msg.Kind != queue.KindKnowledgeReload:
			telemetry.Warn("kbsync.message_unknown_kind", map[string]any{
				"message_id": aws.ToString(m.MessageId),
				"kind":       msg.Kind,
				"request_id": msg.RequestID,
			})
		default:
			reloads = append(reloads, m)
			continue
		}
		if p.delete(ctx, m) {
			deleted++
		}
	}

	if len(reloads) == 0 {
		return deleted
	}

	start := time.Now()
	base, err := p.Reloader.Reload(ctx)
	metrics.IncReload(err)
	if err != nil {
		telemetry.Error("kbsync.reload_failed", map[string]any{
			"messages": len(reloads),
			"error":    err.Error(),
		})
		return deleted
	}
	telemetry.Info("kbsync.reloaded", map[string]any{
		"messages":     len(reloads),
		"explanations": base.Len(),
		"version":      base.Version(),
		"duration_ms":  metrics.Since(start),
	})
	for _, m := range reloads {
		if p.delete(ctx, m) {
			deleted++
		}
	}
	return deleted
}

func (p *Poller) delete(ctx context.Context, m sqstypes.Message) bool {
	_, err := p.Client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.QueueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		telemetry.Warn("kbsync.delete_failed", map[string]any{
			"message_id": aws.ToString(m.MessageId),
			"error":      err.Error(),
		})
		return false
	}
	return true
}
