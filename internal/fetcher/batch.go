package fetcher

import (
	"context"
	"sync"

	"github.com/jobharvest/avharvest/internal/harvest"
)

// Batch performs every request concurrently and returns results in input
// order. A failed fetch yields a nil entry; one slow or broken request never
// blocks or fails the others beyond its own timeout. There is no retry:
// callers decide whether to skip, break, or continue.
func Batch(
	ctx context.Context,
	f harvest.Fetcher,
	requests []harvest.FetchRequest,
) []*harvest.FetchResponse {
	results := make([]*harvest.FetchResponse, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req harvest.FetchRequest) {
			defer wg.Done()
			resp, err := f.Fetch(ctx, req)
			if err != nil {
				return
			}
			results[i] = &resp
		}(i, req)
	}
	wg.Wait()
	return results
}
