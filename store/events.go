package store

import (
	"log/slog"
	"time"

	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

// Change describes a mutation scope delivered to subscribers. A zero
// DocumentKey means the whole store changed (bulk clear).
type Change struct {
	DocumentKey string     `json:"documentKey,omitempty"`
	Page        int        `json:"page,omitempty"`
	Kind        model.Kind `json:"kind,omitempty"`
}

// Removal carries the detail of a single deleted annotation for
// listeners that need more than the generic change feed, such as a
// redaction preview recomputing itself.
type Removal struct {
	ID          string     `json:"id"`
	DocumentKey string     `json:"documentKey"`
	Page        int        `json:"page"`
	Kind        model.Kind `json:"kind"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Subscription identifies a registered callback; Unsubscribe removes
// it. Safe to call more than once.
type Subscription struct {
	cancel func()
}

// Unsubscribe removes the callback from the store
func (s *Subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

type changeSubscriber struct {
	id int
	fn func(Change)
}

type removalSubscriber struct {
	id int
	fn func(Removal)
}

// Subscribe registers a callback invoked after every mutating
// operation. Callbacks run in registration order; a panicking
// callback is logged and does not block the others.
func (s *Store) Subscribe(fn func(Change)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.changeSubs = append(s.changeSubs, changeSubscriber{id: id, fn: fn})

	return &Subscription{cancel: func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.changeSubs {
			if sub.id == id {
				s.changeSubs = append(s.changeSubs[:i], s.changeSubs[i+1:]...)
				return
			}
		}
	}}
}

// OnRemoval registers a callback for the store-wide removal feed
func (s *Store) OnRemoval(fn func(Removal)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.removalSubs = append(s.removalSubs, removalSubscriber{id: id, fn: fn})

	return &Subscription{cancel: func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.removalSubs {
			if sub.id == id {
				s.removalSubs = append(s.removalSubs[:i], s.removalSubs[i+1:]...)
				return
			}
		}
	}}
}

// notify delivers changes to a snapshot of the subscriber set, taken
// under the lock. Must be called without holding the lock: callbacks
// may call back into the store.
func (s *Store) notify(changes ...Change) {
	if len(changes) == 0 {
		return
	}

	s.mu.Lock()
	subs := make([]changeSubscriber, len(s.changeSubs))
	copy(subs, s.changeSubs)
	s.mu.Unlock()

	for _, change := range changes {
		for _, sub := range subs {
			s.invokeChange(sub, change)
		}
	}
}

func (s *Store) invokeChange(sub changeSubscriber, change Change) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("Subscriber callback panicked", slog.Any("panic", r))
		}
	}()
	sub.fn(change)
}

// publishRemovals delivers removal events in order. Same locking
// contract as notify.
func (s *Store) publishRemovals(removals ...Removal) {
	if len(removals) == 0 {
		return
	}

	s.mu.Lock()
	subs := make([]removalSubscriber, len(s.removalSubs))
	copy(subs, s.removalSubs)
	s.mu.Unlock()

	for _, removal := range removals {
		for _, sub := range subs {
			s.invokeRemoval(sub, removal)
		}
	}
}

func (s *Store) invokeRemoval(sub removalSubscriber, removal Removal) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("Removal listener panicked", slog.Any("panic", r))
		}
	}()
	sub.fn(removal)
}
