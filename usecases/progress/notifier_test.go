package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerlookup/offer-backend/models"
)

func event(jobId string, total int) models.ProgressEvent {
	return models.ProgressEvent{
		JobId:    jobId,
		Status:   models.JobProcessing,
		Progress: models.IngestionProgress{Total: total, New: total},
	}
}

func drain(sub *Subscription) []models.ProgressEvent {
	var events []models.ProgressEvent
	for e := range sub.Events() {
		events = append(events, e)
	}
	return events
}

func TestNotifier_routesEventsByJob(t *testing.T) {
	n := NewNotifier()
	subA := n.Subscribe("a")
	subB := n.Subscribe("b")

	n.Publish(event("a", 1))
	n.Publish(event("b", 2))
	n.Complete(event("a", 3))
	n.Complete(event("b", 4))

	eventsA := drain(subA)
	require.Len(t, eventsA, 2)
	assert.Equal(t, 1, eventsA[0].Progress.Total)
	assert.False(t, eventsA[0].Final)
	assert.Equal(t, 3, eventsA[1].Progress.Total)
	assert.True(t, eventsA[1].Final)

	eventsB := drain(subB)
	require.Len(t, eventsB, 2)
	assert.Equal(t, "b", eventsB[0].JobId)
}

func TestNotifier_completeDropsSubscriptions(t *testing.T) {
	n := NewNotifier()
	for range 5 {
		n.Subscribe("job")
	}
	assert.Equal(t, 5, n.SubscriberCount("job"))

	n.Complete(event("job", 1))
	assert.Equal(t, 0, n.SubscriberCount("job"))

	// publishing after completion has nobody to deliver to
	n.Publish(event("job", 2))
}

func TestNotifier_slowSubscriberKeepsLatestEvents(t *testing.T) {
	n := NewNotifierWithBufferSize(2)
	sub := n.Subscribe("job")

	for i := 1; i <= 10; i++ {
		n.Publish(event("job", i))
	}
	n.Complete(event("job", 11))

	events := drain(sub)
	require.Len(t, events, 2)
	assert.Equal(t, 10, events[0].Progress.Total)
	assert.Equal(t, 11, events[1].Progress.Total)
	assert.True(t, events[1].Final)
}

func TestNotifier_unsubscribe(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe("job")
	sub.Unsubscribe()
	sub.Unsubscribe()

	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, n.SubscriberCount("job"))
	n.Publish(event("job", 1))
}

func TestNotifier_subscribeAll(t *testing.T) {
	n := NewNotifier()
	sub := n.SubscribeAll()

	n.Publish(event("a", 1))
	n.Complete(event("b", 2))

	first := <-sub.Events()
	second := <-sub.Events()
	assert.Equal(t, "a", first.JobId)
	assert.Equal(t, "b", second.JobId)
	assert.True(t, second.Final)

	sub.Unsubscribe()
}

func TestNotifier_concurrentPublish(t *testing.T) {
	n := NewNotifierWithBufferSize(4)
	sub := n.Subscribe("job")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				n.Publish(event("job", i*100+j))
			}
		}()
	}
	wg.Wait()
	n.Complete(event("job", 9999))

	events := drain(sub)
	require.NotEmpty(t, events)
	assert.LessOrEqual(t, len(events), 4)
	assert.True(t, events[len(events)-1].Final)
}

type publisherStub struct {
	mu     sync.Mutex
	events []models.ProgressEvent
}

func (p *publisherStub) PublishProgressEvent(ctx context.Context, event models.ProgressEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *publisherStub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestForward(t *testing.T) {
	n := NewNotifier()
	publisher := &publisherStub{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		Forward(ctx, n, publisher)
		close(done)
	}()

	// wait for the forwarder subscription
	require.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return len(n.all) == 1
	}, time.Second, time.Millisecond)

	n.Publish(event("job", 1))
	n.Complete(event("job", 2))

	require.Eventually(t, func() bool { return publisher.count() == 2 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
