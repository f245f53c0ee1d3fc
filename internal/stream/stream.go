// Package stream fans audit events out to live subscribers so dashboards
// can watch tenant activity without polling the audit log.
package stream

import (
	"sync"
	"time"
)

// Event is the subscriber-visible shape of one audit record. Before/after
// payloads stay in the log; the stream only carries the headline.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	TenantID  string    `json:"tenantId"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
}

const subscriberBuffer = 16

// Stream broadcasts events to all active subscribers. Slow subscribers drop
// events rather than block the publisher.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func New() *Stream {
	return &Stream{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away.
func (s *Stream) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber that has buffer room.
func (s *Stream) Publish(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers reports the current listener count.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
