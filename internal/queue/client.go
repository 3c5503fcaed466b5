package queue

import "context"

// Client publishes knowledge notifications. A nil Client means notifications are off.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
