package support

import "time"

const (
	defaultPollTick     = 2 * time.Second
	defaultActiveWindow = time.Minute
	defaultIdleInterval = 10 * time.Second
)

// PollPolicy decides, on each tick, whether a fetch is due. Recent activity
// polls every tick; otherwise fetches are spaced by IdleInterval.
type PollPolicy struct {
	Tick         time.Duration
	ActiveWindow time.Duration
	IdleInterval time.Duration
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Tick:         defaultPollTick,
		ActiveWindow: defaultActiveWindow,
		IdleInterval: defaultIdleInterval,
	}
}

func (p PollPolicy) normalized() PollPolicy {
	if p.Tick <= 0 {
		p.Tick = defaultPollTick
	}
	if p.ActiveWindow <= 0 {
		p.ActiveWindow = defaultActiveWindow
	}
	if p.IdleInterval < p.Tick {
		p.IdleInterval = p.Tick
	}
	return p
}

func (p PollPolicy) Active(now, lastActivity time.Time) bool {
	p = p.normalized()
	return !lastActivity.IsZero() && now.Sub(lastActivity) < p.ActiveWindow
}

// Due reports whether a tick at now should fetch. Idle spacing tolerates
// half a tick of jitter so a 10s interval does not slip to 12s.
func (p PollPolicy) Due(now, lastActivity, lastFetch time.Time) bool {
	p = p.normalized()
	if lastFetch.IsZero() {
		return true
	}
	if p.Active(now, lastActivity) {
		return true
	}
	return now.Sub(lastFetch) >= p.IdleInterval-p.Tick/2
}
