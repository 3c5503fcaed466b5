package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KindKnowledgeReload asks every API process to reload its knowledge base.
const KindKnowledgeReload = "knowledge.reload"

// CurrentVersion is the payload version producers write.
const CurrentVersion = 1

var ErrInvalidMessage = errors.New("invalid queue message")

// Message is the payload sent to queue consumers.
type Message struct {
	Kind       string `json:"kind"`
	Source     string `json:"source,omitempty"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewReloadMessage builds a knowledge reload notification. An empty requestID
// gets a fresh one.
func NewReloadMessage(source, requestID string, now time.Time) Message {
	if strings.TrimSpace(requestID) == "" {
		requestID = uuid.NewString()
	}
	return Message{
		Kind:       KindKnowledgeReload,
		Source:     source,
		RequestID:  requestID,
		EnqueuedAt: now.UTC().Format(time.RFC3339),
		Version:    CurrentVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message. A payload without a
// kind is rejected.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if strings.TrimSpace(msg.Kind) == "" {
		return Message{}, fmt.Errorf("%w: missing kind", ErrInvalidMessage)
	}
	return msg, nil
}
