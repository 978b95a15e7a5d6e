// Package delivery defines the surface the bot core uses to post and edit
// chat messages, decoupled from the concrete chat transport.
package delivery

import (
	"context"
	"errors"
)

// Errors the transport adapter maps platform failures onto.
var (
	// ErrChannelNotFound means the channel no longer resolves to a sendable target.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrUnauthorized means the bot lacks permission to post in the channel.
	// This is non-retryable for a schedule.
	ErrUnauthorized = errors.New("not authorized to send to channel")

	// ErrMessageNotFound means a previously sent message no longer exists.
	ErrMessageNotFound = errors.New("message not found")
)

// MessageRef identifies a delivered message for later edits.
type MessageRef struct {
	ChannelID int64
	MessageID int
}

// Surface is the outbound message transport.
// Implementations must return the sentinel errors above for the
// corresponding failure classes; any other error is treated as transient.
type Surface interface {
	// Resolve checks that the channel is a valid send target.
	Resolve(ctx context.Context, channelID int64) error

	// Send posts text to the channel and returns a reference to the message.
	Send(ctx context.Context, channelID int64, text string) (MessageRef, error)

	// Edit replaces the text of a previously sent message.
	Edit(ctx context.Context, ref MessageRef, text string) error
}
