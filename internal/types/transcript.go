package types

import "time"

type TranscriptReason string

const (
	TranscriptReasonAgentGoodbye TranscriptReason = "agent_goodbye"
)

type Transcript struct {
	ID       string           `json:"id"`
	Entries  []Entry          `json:"entries"`
	Reason   TranscriptReason `json:"reason"`
	EndedAt  time.Time        `json:"ended_at"`
	Customer string           `json:"customer,omitempty"`
}
