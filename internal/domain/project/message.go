package project

import "time"

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderClient    Sender = "client"
	SenderDeveloper Sender = "developer"
)

// IsValid returns true if the sender is one of the defined constants.
func (s Sender) IsValid() bool {
	return s == SenderClient || s == SenderDeveloper
}

// ChatMessage is one entry in a project's append-only conversation thread,
// ordered by send time.
type ChatMessage struct {
	ID     string    `json:"id"`
	Sender Sender    `json:"sender"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}
