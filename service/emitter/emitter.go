package emitter

import (
	"sync"

	"github.com/reservex/goapi/base/ctx"
	"github.com/reservex/goapi/base/metrics"
	"github.com/reservex/goapi/domain/auction"
)

// Service fans auction lifecycle events out to subscribers. A single dispatch
// goroutine forwards events in the order they were emitted, so each
// subscriber observes every auction's events in program order.
type Service interface {
	auction.Emitter

	// Subscribe registers an observer channel with the given buffer. The
	// returned cancel removes the subscription and closes the channel.
	Subscribe(buffer int) (<-chan *auction.Event, func())

	// Close stops dispatching after draining queued events and closes all
	// subscriber channels
	Close()
}

type subscriber struct {
	id   int
	ch   chan *auction.Event
	done chan struct{}

	once   sync.Once
	mu     sync.Mutex
	closed bool
}

// send and shut are serialized per subscriber so a cancel can never close
// the channel under an in-flight send. An in-flight send parked on a full
// buffer is released through done, so shut never waits behind it.
func (s *subscriber) send(ev *auction.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
	case <-s.done:
	}
}

func (s *subscriber) shut() {
	// done is closed before taking the lock so a send blocked on the
	// subscriber buffer cannot deadlock the shutdown
	s.once.Do(func() { close(s.done) })

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

type impl struct {
	met metrics.Service

	queue chan *auction.Event

	mu      sync.Mutex
	subs    map[int]*subscriber
	nextSub int
	closed  bool

	done chan struct{}
}

func New(queueSize int) Service {
	im := &impl{
		met:   metrics.New("emitter"),
		queue: make(chan *auction.Event, queueSize),
		subs:  map[int]*subscriber{},
		done:  make(chan struct{}),
	}
	go im.dispatch()
	return im
}

// Emit never blocks the caller. A full queue means the dispatcher is wedged
// on a slow subscriber, so the event is dropped and counted instead of
// stalling the auction state machine.
func (im *impl) Emit(c ctx.Ctx, ev *auction.Event) {
	im.met.BumpSum("emit", 1, "type", string(ev.Type))
	select {
	case im.queue <- ev:
	default:
		im.met.BumpSum("emit.dropped", 1, "type", string(ev.Type))
		c.WithField("event", ev).Warn("event queue full, event dropped")
	}
}

func (im *impl) Subscribe(buffer int) (<-chan *auction.Event, func()) {
	im.mu.Lock()
	defer im.mu.Unlock()

	sub := &subscriber{
		id:   im.nextSub,
		ch:   make(chan *auction.Event, buffer),
		done: make(chan struct{}),
	}
	im.nextSub++
	im.subs[sub.id] = sub

	cancel := func() {
		im.mu.Lock()
		delete(im.subs, sub.id)
		im.mu.Unlock()
		sub.shut()
	}
	return sub.ch, cancel
}

func (im *impl) Close() {
	im.mu.Lock()
	if im.closed {
		im.mu.Unlock()
		return
	}
	im.closed = true
	im.mu.Unlock()

	close(im.queue)
	<-im.done

	im.mu.Lock()
	subs := make([]*subscriber, 0, len(im.subs))
	for id, sub := range im.subs {
		delete(im.subs, id)
		subs = append(subs, sub)
	}
	im.mu.Unlock()

	for _, sub := range subs {
		sub.shut()
	}
}

func (im *impl) dispatch() {
	defer close(im.done)
	for ev := range im.queue {
		im.mu.Lock()
		subs := make([]*subscriber, 0, len(im.subs))
		for _, sub := range im.subs {
			subs = append(subs, sub)
		}
		im.mu.Unlock()

		// a blocking send on a full subscriber buffer applies backpressure
		// rather than letting a slow observer see reordered events
		for _, sub := range subs {
			sub.send(ev)
		}
	}
}
