package support

import (
	"time"

	"storechat/internal/types"
)

type State int

const (
	StateNoSession State = iota
	StateBotGuided
	StateAgentActive
	StateEnded
	StateArchived
)

func (s State) String() string {
	switch s {
	case StateBotGuided:
		return "bot_guided"
	case StateAgentActive:
		return "agent_active"
	case StateEnded:
		return "ended"
	case StateArchived:
		return "archived"
	default:
		return "no_session"
	}
}

const defaultTalkingFor = 2 * time.Second

// Session classifies fetched message batches into the active conversation
// and the archived transcript. It is not safe for concurrent use.
type Session struct {
	goodbye    GoodbyePredicate
	talkingFor time.Duration

	persisted []types.Entry
	ephemeral []types.Entry
	active    []types.Entry
	archived  []types.Entry

	seen      map[int64]struct{}
	dismissed map[int64]struct{}
	fresh     map[string]struct{}

	agentConnected bool
	ended          bool
	saved          bool
	talkingUntil   time.Time
}

// ApplyResult describes what a fetched batch changed.
type ApplyResult struct {
	Ignored     bool
	AgentJoined bool
	Ended       bool
	NewAdmin    int
	NewIDs      []int64
	Archived    []types.Entry
}

func NewSession(goodbye GoodbyePredicate, talkingFor time.Duration) *Session {
	if goodbye == nil {
		goodbye = defaultDetector
	}
	if talkingFor <= 0 {
		talkingFor = defaultTalkingFor
	}
	return &Session{
		goodbye:    goodbye,
		talkingFor: talkingFor,
		seen:       map[int64]struct{}{},
		dismissed:  map[int64]struct{}{},
		fresh:      map[string]struct{}{},
	}
}

func (s *Session) State() State {
	switch {
	case s.ended && s.saved:
		return StateArchived
	case s.ended:
		return StateEnded
	case s.agentConnected:
		return StateAgentActive
	case len(s.active) > 0:
		return StateBotGuided
	default:
		return StateNoSession
	}
}

// Apply reclassifies the session against a freshly fetched batch. Once the
// session has ended, batches are ignored until Reset.
func (s *Session) Apply(batch []types.Message, now time.Time) ApplyResult {
	if s.ended {
		return ApplyResult{Ignored: true}
	}
	live := s.filter(batch)

	var result ApplyResult
	var lastAdmin *types.Message
	for i := range live {
		if live[i].IsAdmin() {
			lastAdmin = &live[i].Message
		}
	}
	if lastAdmin != nil && !s.agentConnected {
		s.agentConnected = true
		result.AgentJoined = true
	}

	clear(s.fresh)
	for _, entry := range live {
		if _, ok := s.seen[entry.ID]; ok {
			continue
		}
		result.NewIDs = append(result.NewIDs, entry.ID)
		s.fresh[entry.Key()] = struct{}{}
		if entry.IsAdmin() {
			result.NewAdmin++
		}
	}

	if lastAdmin != nil && s.agentConnected && s.goodbye.IsGoodbye(lastAdmin.Text) {
		s.persisted = live
		s.archived = mergeEntries(s.persisted, s.ephemeral)
		s.persisted = nil
		s.ephemeral = nil
		s.active = nil
		s.ended = true
		s.agentConnected = false
		s.talkingUntil = time.Time{}
		clear(s.fresh)
		s.markSeen(live)
		result.Ended = true
		result.Archived = types.CloneEntries(s.archived)
		return result
	}

	if result.NewAdmin > 0 {
		s.talkingUntil = now.Add(s.talkingFor)
	}
	s.markSeen(live)
	s.persisted = live
	s.active = mergeEntries(s.persisted, s.ephemeral)
	return result
}

func (s *Session) filter(batch []types.Message) []types.Entry {
	out := make([]types.Entry, 0, len(batch))
	index := make(map[int64]int, len(batch))
	for _, msg := range batch {
		if msg.IsClosed() || msg.ID <= 0 {
			continue
		}
		if _, ok := s.dismissed[msg.ID]; ok {
			continue
		}
		if i, ok := index[msg.ID]; ok {
			out[i] = types.Persisted(msg)
			continue
		}
		index[msg.ID] = len(out)
		out = append(out, types.Persisted(msg))
	}
	return out
}

func (s *Session) markSeen(entries []types.Entry) {
	for _, entry := range entries {
		s.seen[entry.ID] = struct{}{}
	}
}

// AppendEphemeral adds a client-side bot message to the active
// conversation. It is dropped once the session has ended.
func (s *Session) AppendEphemeral(entry types.Entry) bool {
	if s.ended || !entry.IsEphemeral() {
		return false
	}
	s.ephemeral = append(s.ephemeral, entry)
	s.fresh[entry.Key()] = struct{}{}
	s.active = mergeEntries(s.persisted, s.ephemeral)
	return true
}

// MarkArchived records that the ended transcript was saved locally.
func (s *Session) MarkArchived() {
	if s.ended {
		s.saved = true
	}
}

// Dismiss hides ids from every later batch. Used for messages the customer
// closed, so a failed remote close cannot resurrect them.
func (s *Session) Dismiss(ids []int64) {
	for _, id := range ids {
		s.dismissed[id] = struct{}{}
	}
}

// Reset returns to NoSession. Dismissed ids survive.
func (s *Session) Reset() {
	s.persisted = nil
	s.ephemeral = nil
	s.active = nil
	s.archived = nil
	clear(s.seen)
	clear(s.fresh)
	s.agentConnected = false
	s.ended = false
	s.saved = false
	s.talkingUntil = time.Time{}
}

func (s *Session) Active() []types.Entry {
	return types.CloneEntries(s.active)
}

func (s *Session) Archived() []types.Entry {
	return types.CloneEntries(s.archived)
}

func (s *Session) Empty() bool {
	return len(s.active) == 0 && len(s.archived) == 0
}

func (s *Session) Ended() bool {
	return s.ended
}

func (s *Session) AgentConnected() bool {
	return s.agentConnected
}

func (s *Session) Talking(now time.Time) bool {
	return !s.talkingUntil.IsZero() && now.Before(s.talkingUntil)
}

func (s *Session) TalkingUntil() time.Time {
	return s.talkingUntil
}

func (s *Session) Seen(id int64) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *Session) SeenCount() int {
	return len(s.seen)
}

func (s *Session) IsFresh(entry types.Entry) bool {
	_, ok := s.fresh[entry.Key()]
	return ok
}

func (s *Session) ClosableActive() []int64 {
	return closableIDs(s.active)
}

func (s *Session) ClosableArchived() []int64 {
	return closableIDs(s.archived)
}

func closableIDs(entries []types.Entry) []int64 {
	var ids []int64
	for _, entry := range entries {
		if entry.Closable() {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

// mergeEntries interleaves ephemeral entries into the persisted list by
// creation time. Persisted order is kept as the backend returned it.
func mergeEntries(persisted, ephemeral []types.Entry) []types.Entry {
	if len(ephemeral) == 0 {
		return types.CloneEntries(persisted)
	}
	out := make([]types.Entry, 0, len(persisted)+len(ephemeral))
	i, j := 0, 0
	for i < len(persisted) && j < len(ephemeral) {
		p := persisted[i]
		if p.CreatedAt.IsZero() || !p.CreatedAt.After(ephemeral[j].CreatedAt) {
			out = append(out, p)
			i++
			continue
		}
		out = append(out, ephemeral[j])
		j++
	}
	out = append(out, persisted[i:]...)
	out = append(out, ephemeral[j:]...)
	return out
}
