package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentFetches(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var fetches atomic.Int32

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	var shared atomic.Int32
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			body, err, fromOther := flight.Do("https://upstream/odds", func() ([]byte, error) {
				fetches.Add(1)
				time.Sleep(20 * time.Millisecond)
				return []byte(`{"ok":true}`), nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if string(body) != `{"ok":true}` {
				t.Errorf("body=%q", body)
			}
			if fromOther {
				shared.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := fetches.Load(); got != 1 {
		t.Fatalf("fetch ran %d times, want 1", got)
	}
	if got := shared.Load(); got != workers-1 {
		t.Fatalf("shared results=%d, want %d waiters", got, workers-1)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var fetches atomic.Int32

	fetch := func() ([]byte, error) {
		fetches.Add(1)
		return nil, nil
	}

	if _, err, _ := flight.Do("https://upstream/fixtures?league=39", fetch); err != nil {
		t.Fatalf("first key: %v", err)
	}
	if _, err, _ := flight.Do("https://upstream/fixtures?league=40", fetch); err != nil {
		t.Fatalf("second key: %v", err)
	}

	if got := fetches.Load(); got != 2 {
		t.Fatalf("fetch ran %d times, want 2", got)
	}
}
