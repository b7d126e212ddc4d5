package amqp

import "sync"

// Acknowledgements tracks delivery tags awaiting a publisher-confirm
// (basic.ack/basic.nack) once a channel has called confirm.select. Tags are
// kept in the order they were published so a "multiple" ack/nack (which
// covers every outstanding tag up to and including the one named) can be
// resolved without scanning the broker's whole vocabulary of tags.
type Acknowledgements struct {
	mu      sync.Mutex
	order   []uint64
	waiters map[uint64]*Wait[bool]
}

// NewAcknowledgements returns an empty tracker.
func NewAcknowledgements() *Acknowledgements {
	return &Acknowledgements{waiters: make(map[uint64]*Wait[bool])}
}

// RegisterPending records that tag is awaiting confirmation and returns the
// promise the publisher blocks on.
func (a *Acknowledgements) RegisterPending(tag uint64) *Wait[bool] {
	a.mu.Lock()
	defer a.mu.Unlock()
	w := NewWait[bool]()
	a.order = append(a.order, tag)
	a.waiters[tag] = w
	return w
}

// Await returns the promise already registered for tag by RegisterPending
// (the common case: Publish registers it up front so a confirm racing the
// caller's AwaitConfirm call is never missed), or registers a fresh one if
// Publish never ran in confirm mode for this tag.
func (a *Acknowledgements) Await(tag uint64) *Wait[bool] {
	a.mu.Lock()
	if w, ok := a.waiters[tag]; ok {
		a.mu.Unlock()
		return w
	}
	a.mu.Unlock()
	return a.RegisterPending(tag)
}

// Ack resolves tag (or, if multiple is set, every pending tag up to and
// including tag) as acknowledged. It reports false if tag matched nothing
// pending, which the caller treats as a protocol violation.
func (a *Acknowledgements) Ack(tag uint64, multiple bool) bool {
	return a.resolve(tag, multiple, true)
}

// Nack resolves tag (or every pending tag up to and including tag, if
// multiple is set) as rejected. It reports false if tag matched nothing
// pending.
func (a *Acknowledgements) Nack(tag uint64, multiple bool) bool {
	return a.resolve(tag, multiple, false)
}

func (a *Acknowledgements) resolve(tag uint64, multiple bool, ok bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !multiple {
		return a.removeAndResolve(tag, ok)
	}

	if tag != 0 && !a.anyPendingAtMost(tag) {
		return false
	}

	var remaining []uint64
	for _, t := range a.order {
		if t <= tag || tag == 0 {
			if w, found := a.waiters[t]; found {
				w.Resolve(ok)
				delete(a.waiters, t)
			}
			continue
		}
		remaining = append(remaining, t)
	}
	a.order = remaining
	return true
}

func (a *Acknowledgements) anyPendingAtMost(tag uint64) bool {
	for _, t := range a.order {
		if t <= tag {
			return true
		}
	}
	return false
}

func (a *Acknowledgements) removeAndResolve(tag uint64, ok bool) bool {
	w, found := a.waiters[tag]
	if !found {
		return false
	}
	w.Resolve(ok)
	delete(a.waiters, tag)
	for i, t := range a.order {
		if t == tag {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

// AckAllPending resolves every tag still outstanding as acknowledged; used
// when a channel or connection closes cleanly and any publisher confirms
// that raced the close are assumed to have landed.
func (a *Acknowledgements) AckAllPending() {
	a.resolveAll(true)
}

// NackAllPending resolves every tag still outstanding as rejected; used
// when the channel or connection is torn down by an error.
func (a *Acknowledgements) NackAllPending() {
	a.resolveAll(false)
}

func (a *Acknowledgements) resolveAll(ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.order {
		if w, found := a.waiters[t]; found {
			w.Resolve(ok)
			delete(a.waiters, t)
		}
	}
	a.order = nil
}

// GetLastPending returns the highest tag still awaiting confirmation, and
// whether any tag is outstanding at all.
func (a *Acknowledgements) GetLastPending() (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.order) == 0 {
		return 0, false
	}
	return a.order[len(a.order)-1], true
}

// Len reports how many tags are currently outstanding.
func (a *Acknowledgements) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.order)
}
