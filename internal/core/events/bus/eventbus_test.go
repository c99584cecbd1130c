package bus

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type testObserver struct {
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New[int]()
	var got []int
	b.Subscribe("tick", func(e Event[int]) error {
		got = append(got, e.Data)
		if e.ID == "" || e.Topic != "tick" {
			t.Errorf("bad envelope: %+v", e)
		}
		return nil
	})
	if err := b.Publish("tick", 7); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("handler got %v", got)
	}
}

func TestTopicsIsolation(t *testing.T) {
	b := New[string]()
	count1, count2 := 0, 0
	b.Subscribe("t1", func(Event[string]) error { count1++; return nil })
	b.Subscribe("t2", func(Event[string]) error { count2++; return nil })
	_ = b.Publish("t1", "x")
	if count1 != 1 || count2 != 0 {
		t.Fatalf("topic isolation failed: %d %d", count1, count2)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New[int]()
	calls := 0
	sub := b.Subscribe("e", func(Event[int]) error { calls++; return nil })
	_ = b.Publish("e", 1)
	sub.Cancel()
	sub.Cancel()
	_ = b.Publish("e", 2)
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if sub.IsActive() || b.Subscribers("e") != 0 {
		t.Fatal("subscription still registered")
	}
}

func TestErrorsAreJoined(t *testing.T) {
	b := New[int]()
	e1, e2 := errors.New("one"), errors.New("two")
	b.Subscribe("e", func(Event[int]) error { return e1 })
	b.Subscribe("e", func(Event[int]) error { return nil })
	b.Subscribe("e", func(Event[int]) error { return e2 })
	err := b.Publish("e", 0)
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestFiltersDrop(t *testing.T) {
	b := New[int]()
	calls := 0
	b.Subscribe("e", func(Event[int]) error { calls++; return nil })
	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish("e", 3, func(e Event[int]) bool { return e.Data%2 == 0 })
	if calls != 0 || b.Metrics().DroppedByFilters != 1 {
		t.Fatalf("filter did not drop: calls=%d metrics=%+v", calls, b.Metrics())
	}
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New[int]()
	b.Subscribe("e", func(Event[int]) error { return nil })
	_ = b.Publish("e", 0)
	if m := b.Metrics(); m.Published != 0 {
		t.Fatalf("metrics should be zero without observers: %+v", m)
	}
	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish("e", 0)
	if m := b.Metrics(); m.Published != 1 || m.DeliveredHandlers != 1 {
		t.Fatalf("metrics should update with observer: %+v", m)
	}
	if obs.deliveredCount != 1 {
		t.Fatalf("observer not called: %+v", obs)
	}
	b.RemoveObserver(obs)
	_ = b.Publish("e", 0)
	if obs.deliveredCount != 1 {
		t.Fatal("removed observer still called")
	}
}

func TestConcurrentPublish(t *testing.T) {
	b := New[int]()
	var mu sync.Mutex
	total := 0
	b.Subscribe("e", func(e Event[int]) error {
		mu.Lock()
		total += e.Data
		mu.Unlock()
		return nil
	})
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_ = b.Publish("e", v)
		}(i)
	}
	wg.Wait()
	if total != 50*51/2 {
		t.Fatalf("lost deliveries: %d", total)
	}
}
