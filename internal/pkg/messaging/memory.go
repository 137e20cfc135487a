package messaging

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is an in-process broker. Every consumer of a subject receives every
// message, or one member per queue group, matching the NATS driver.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string][]*memorySub
	closed bool
	seq    atomic.Uint64
}

type memorySub struct {
	group string
	ch    chan *memoryMessage
	done  chan struct{}
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string][]*memorySub)}
}

// Close stops accepting messages. Running consumers return when their context ends.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Publish delivers msg to the current consumers of destination. Messages
// published while nobody listens are dropped, as with core NATS.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrSubjectRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return PublishResult{}, ErrClosed
	}

	id := strconv.FormatUint(m.seq.Add(1), 10)
	now := time.Now()
	seenGroups := make(map[string]struct{})

	for _, sub := range m.subs[destination] {
		if sub.group != "" {
			if _, seen := seenGroups[sub.group]; seen {
				continue
			}
			seenGroups[sub.group] = struct{}{}
		}

		mm := &memoryMessage{subject: destination, body: msg.Body, headers: msg.Headers, at: now}
		select {
		case sub.ch <- mm:
		case <-sub.done:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}

	return PublishResult{MessageID: id, Subject: destination, Timestamp: now}, nil
}

// Consume registers a subscription on source and blocks until ctx is canceled.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrSubjectRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	sub := &memorySub{group: co.queueGroup, ch: make(chan *memoryMessage, 64), done: make(chan struct{})}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.subs[source] = append(m.subs[source], sub)
	m.mu.Unlock()

	defer m.unsubscribe(source, sub)
	defer close(sub.done)

	sema := make(chan struct{}, co.concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case mm := <-sub.ch:
			sema <- struct{}{}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sema }()
				dispatch(ctx, "memory", handler, mm, co.autoAck)
			}()
		}
	}
}

func (m *Memory) unsubscribe(source string, sub *memorySub) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subs[source]
	for i, s := range subs {
		if s == sub {
			m.subs[source] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns how many consumers are registered on subject.
func (m *Memory) Subscribers(subject string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.subs[subject])
}

type memoryMessage struct {
	subject string
	body    []byte
	headers []Header
	at      time.Time
	acked   atomic.Bool
}

func (m *memoryMessage) Body() []byte         { return m.body }
func (m *memoryMessage) Headers() []Header    { return m.headers }
func (m *memoryMessage) Subject() string      { return m.subject }
func (m *memoryMessage) Timestamp() time.Time { return m.at }

func (m *memoryMessage) Ack(context.Context) error {
	m.acked.Store(true)
	return nil
}
