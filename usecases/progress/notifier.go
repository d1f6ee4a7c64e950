package progress

import (
	"sync"

	"github.com/offerlookup/offer-backend/models"
)

const defaultSubscriptionBufferSize = 16

// Notifier broadcasts ingestion progress events to in process subscribers, keyed by job id.
// Publishing never blocks: when a subscriber lags behind, its oldest pending event is dropped.
type Notifier struct {
	mu         sync.Mutex
	bufferSize int
	byJob      map[string]map[*Subscription]struct{}
	all        map[*Subscription]struct{}
}

type Subscription struct {
	notifier *Notifier
	jobId    string
	events   chan models.ProgressEvent
	closed   bool
}

func NewNotifier() *Notifier {
	return NewNotifierWithBufferSize(defaultSubscriptionBufferSize)
}

func NewNotifierWithBufferSize(size int) *Notifier {
	if size < 1 {
		size = 1
	}
	return &Notifier{
		bufferSize: size,
		byJob:      make(map[string]map[*Subscription]struct{}),
		all:        make(map[*Subscription]struct{}),
	}
}

// Subscribe returns a subscription receiving the events of one job. Its channel is closed after the
// final event of the job, or when Unsubscribe is called.
func (n *Notifier) Subscribe(jobId string) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	sub := n.newSubscription(jobId)
	if n.byJob[jobId] == nil {
		n.byJob[jobId] = make(map[*Subscription]struct{})
	}
	n.byJob[jobId][sub] = struct{}{}
	return sub
}

// SubscribeAll returns a subscription receiving the events of every job. It stays open until Unsubscribe.
func (n *Notifier) SubscribeAll() *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	sub := n.newSubscription("")
	n.all[sub] = struct{}{}
	return sub
}

func (n *Notifier) newSubscription(jobId string) *Subscription {
	return &Subscription{
		notifier: n,
		jobId:    jobId,
		events:   make(chan models.ProgressEvent, n.bufferSize),
	}
}

func (s *Subscription) Events() <-chan models.ProgressEvent {
	return s.events
}

func (s *Subscription) Unsubscribe() {
	n := s.notifier
	n.mu.Lock()
	defer n.mu.Unlock()

	if s.jobId == "" {
		delete(n.all, s)
	} else if subs, ok := n.byJob[s.jobId]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(n.byJob, s.jobId)
		}
	}
	s.close()
}

// must hold the notifier lock
func (s *Subscription) close() {
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// must hold the notifier lock
func (s *Subscription) deliver(event models.ProgressEvent) {
	if s.closed {
		return
	}
	for {
		select {
		case s.events <- event:
			return
		default:
		}
		// full: drop the oldest pending event, unless the reader just drained it
		select {
		case <-s.events:
		default:
		}
	}
}

func (n *Notifier) Publish(event models.ProgressEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for sub := range n.byJob[event.JobId] {
		sub.deliver(event)
	}
	for sub := range n.all {
		sub.deliver(event)
	}
}

// Complete delivers the final event of a job then closes and forgets all of the job's subscriptions.
func (n *Notifier) Complete(event models.ProgressEvent) {
	event.Final = true

	n.mu.Lock()
	defer n.mu.Unlock()

	for sub := range n.byJob[event.JobId] {
		sub.deliver(event)
		sub.close()
	}
	delete(n.byJob, event.JobId)
	for sub := range n.all {
		sub.deliver(event)
	}
}

func (n *Notifier) SubscriberCount(jobId string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.byJob[jobId])
}
