package types

import (
	"encoding/json"
	"time"
)

// Provenance records where a chat entry came from.
type Provenance int

const (
	// ProvenancePersisted entries were returned by the support backend.
	ProvenancePersisted Provenance = iota
	// ProvenanceEphemeral entries were synthesized by the client (bot replies,
	// lookup results) and never leave the local process or local store.
	ProvenanceEphemeral
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceEphemeral:
		return "ephemeral"
	default:
		return "persisted"
	}
}

type Entry struct {
	Message
	Provenance Provenance `json:"provenance"`
	LocalID    string     `json:"local_id,omitempty"`
}

// UnmarshalJSON is needed because Message's decoder would otherwise be
// promoted and drop the provenance fields.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	var meta struct {
		Provenance Provenance `json:"provenance"`
		LocalID    string     `json:"local_id"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return err
	}
	e.Message = msg
	e.Provenance = meta.Provenance
	e.LocalID = meta.LocalID
	return nil
}

func Persisted(msg Message) Entry {
	return Entry{Message: msg, Provenance: ProvenancePersisted}
}

// Ephemeral builds a client-side bot message. Bot messages render as admin
// bubbles but carry no backend ID.
func Ephemeral(localID, text string, at time.Time) Entry {
	return Entry{
		Message: Message{
			Text:      text,
			Sender:    SenderAdmin,
			Status:    MessageStatusReplied,
			CreatedAt: at,
		},
		Provenance: ProvenanceEphemeral,
		LocalID:    localID,
	}
}

func (e Entry) IsEphemeral() bool {
	return e.Provenance == ProvenanceEphemeral
}

// Closable reports whether the entry may be sent to the close endpoint.
func (e Entry) Closable() bool {
	return e.Provenance == ProvenancePersisted && IsBackendID(e.ID)
}

// Key is a stable identity for rendering and de-duplication.
func (e Entry) Key() string {
	if e.IsEphemeral() {
		return "local:" + e.LocalID
	}
	return "msg:" + formatInt(e.ID)
}

func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
