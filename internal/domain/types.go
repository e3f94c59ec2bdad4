package domain

import "time"

type RequestID string
type EntryID string

// Role is the speaker of a few-shot exchange.
type Role string

const (
	RoleUser    Role = "User"
	RoleChatbot Role = "Chatbot"
)

// Exchange is one (role, message) pair of the static few-shot history.
type Exchange struct {
	Role    Role
	Message string
}

// UtteranceEntry is one record of the diagnostic utterance log.
type UtteranceEntry struct {
	ID         EntryID
	RequestID  RequestID
	Text       string
	ReceivedAt Timestamp
}

type Timestamp = time.Time
