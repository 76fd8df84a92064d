package resilience

import "sync"

// SingleFlight collapses concurrent fetches of the same URL into one
// upstream request. Results are raw response bodies: every waiter gets the
// same bytes and the same error as the fetch that actually ran.
type SingleFlight struct {
	mu      sync.Mutex
	flights map[string]*flight
}

type flight struct {
	done chan struct{}
	body []byte
	err  error
}

// Do runs fetch for key unless an identical fetch is already in flight, in
// which case it waits for that one and shares its outcome. The bool reports
// whether the result came from another caller's fetch.
func (g *SingleFlight) Do(key string, fetch func() ([]byte, error)) ([]byte, error, bool) {
	g.mu.Lock()
	if g.flights == nil {
		g.flights = make(map[string]*flight)
	}
	if f, ok := g.flights[key]; ok {
		g.mu.Unlock()
		<-f.done
		return f.body, f.err, true
	}

	f := &flight{done: make(chan struct{})}
	g.flights[key] = f
	g.mu.Unlock()

	f.body, f.err = fetch()
	close(f.done)

	g.mu.Lock()
	delete(g.flights, key)
	g.mu.Unlock()

	return f.body, f.err, false
}
