package aggregate

import (
	"context"
	"sync"
)

// fetchConcurrency bounds how many per-event reads run at once. The fetches
// are independent snapshots; results are slotted by event position and folded
// in order, so completion order never affects the output.
const fetchConcurrency = 8

// mapEvents runs fetch once per event id and returns the results indexed by
// the event's position. The first fetch error, in event order, wins.
func mapEvents[T any](ctx context.Context, eventIDs []string, fetch func(context.Context, string) (T, error)) ([]T, error) {
	results := make([]T, len(eventIDs))
	errs := make([]error, len(eventIDs))

	sem := make(chan struct{}, fetchConcurrency)
	var wg sync.WaitGroup
	for i, id := range eventIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = fetch(ctx, id)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
