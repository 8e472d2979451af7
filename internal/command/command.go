// Package command defines the chat command interface and the registry the
// bot dispatches through.
package command

import (
	"context"

	"scorebot/internal/groupme"
	"scorebot/internal/parse"
)

// Request is one parsed chat command and the message that carried it.
type Request struct {
	Message *groupme.Message
	Command parse.Command
	// Admin is set when the sender is a configured admin.
	Admin bool
}

// SenderID returns the GroupMe user id of the sender.
func (r *Request) SenderID() string {
	return r.Message.SenderID
}

// TaggedIDs returns the user ids tagged in the message.
func (r *Request) TaggedIDs() []string {
	return r.Message.MentionIDs()
}

// Handler implements one chat command.
type Handler interface {
	// Name returns the keyword that triggers the command, without the slash.
	Name() string

	// Aliases returns extra keywords for the same command.
	Aliases() []string

	// Description is a one-line summary used by verbose help.
	Description() string

	// Usage is the reply sent when the command does not parse.
	Usage() string

	// AdminOnly reports whether only admins may run the command.
	AdminOnly() bool

	// Handle runs the command and returns the reply text. An empty reply
	// sends nothing. Errors are for failures the user cannot fix.
	Handle(ctx context.Context, req *Request) (string, error)
}
