package router

import "tezbot/app/activity"

// Outcome is the routing decision for one inbound text message.
type Outcome interface {
	isOutcome()
}

// ActivityReply means the active-activity branch consumed the message.
type ActivityReply struct {
	Kind      activity.Kind
	Text      string
	Completed bool
}

// ToolHandled means a natural-language tool trigger matched, including
// the usage-hint case where parameters were missing.
type ToolHandled struct {
	Tool string
	Text string
}

// Passthrough means no branch matched and the message is a generic chat
// turn for the model.
type Passthrough struct{}

func (ActivityReply) isOutcome() {}
func (ToolHandled) isOutcome()   {}
func (Passthrough) isOutcome()   {}
