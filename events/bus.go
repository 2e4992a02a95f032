// Package events is the application-scoped change feed. Services publish
// after successful writes; websocket clients and notification sinks
// subscribe.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Topic string

const (
	TopicBeneficiary  Topic = "beneficiary"
	TopicCenter       Topic = "center"
	TopicSchedule     Topic = "schedule"
	TopicPrincipal    Topic = "principal"
	TopicSession      Topic = "session"
	TopicNotification Topic = "notification"
)

type Event struct {
	ID     string      `json:"id"`
	Topic  Topic       `json:"topic"`
	Type   string      `json:"type"`
	Key    string      `json:"key,omitempty"`
	Actor  string      `json:"actor,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Origin string      `json:"origin,omitempty"`
	At     time.Time   `json:"at"`
}

const DefaultBuffer = 64

type subscriber struct {
	ch     chan Event
	topics map[Topic]bool
}

func (s *subscriber) wants(t Topic) bool {
	return len(s.topics) == 0 || s.topics[t]
}

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu        sync.RWMutex
	subs      map[int]*subscriber
	next      int
	buffer    int
	dropped   atomic.Uint64
	origin    string
	forwarder func(Event)
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[int]*subscriber),
		buffer: buffer,
		origin: uuid.NewString(),
	}
}

// Origin identifies this process on a shared relay channel.
func (b *Bus) Origin() string {
	return b.origin
}

// SetForwarder registers a hook that receives every locally published
// event, used by the Redis relay.
func (b *Bus) SetForwarder(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forwarder = fn
}

// Subscribe returns a channel of events for the given topics, or all topics
// when none are given. The cancel func unsubscribes and closes the channel.
func (b *Bus) Subscribe(topics ...Topic) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, b.buffer), topics: make(map[Topic]bool)}
	for _, t := range topics {
		sub.topics[t] = true
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
}

func (b *Bus) Publish(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if e.Origin == "" {
		e.Origin = b.origin
	}

	b.deliver(e)

	b.mu.RLock()
	fwd := b.forwarder
	b.mu.RUnlock()
	if fwd != nil {
		fwd(e)
	}
}

// deliver hands e to local subscribers only.
func (b *Bus) deliver(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.wants(e.Topic) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
