package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benvon/smart-journal/internal/models"
)

// DefaultWorkers is the worker count used when a non-positive count is given
const DefaultWorkers = 4

type expansionResult[T models.Template] struct {
	occurrences []T
	err         error
}

// ExpandTasksConcurrently expands tasks on a bounded pool of workers. Results keep the
// input order of templates and the ascending order within each template.
func (e *Expander) ExpandTasksConcurrently(ctx context.Context, tasks []*models.Task, start, end time.Time, workers int) ([]*models.Task, error) {
	return expandConcurrently(ctx, e, tasks, start, end, workers)
}

// ExpandTransactionsConcurrently is the transaction counterpart of ExpandTasksConcurrently
func (e *Expander) ExpandTransactionsConcurrently(ctx context.Context, txns []*models.Transaction, start, end time.Time, workers int) ([]*models.Transaction, error) {
	return expandConcurrently(ctx, e, txns, start, end, workers)
}

func expandConcurrently[T models.Template](ctx context.Context, e *Expander, templates []T, start, end time.Time, workers int) ([]T, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(templates) {
		workers = len(templates)
	}

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make([]expansionResult[T], len(templates))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				occurrences, err := expandTyped(ctx, e, templates[i], start, end)
				if err != nil {
					err = fmt.Errorf("failed to expand template %s: %w", templateID(templates[i]), err)
					cancel()
				}
				results[i] = expansionResult[T]{occurrences: occurrences, err: err}
			}
		}()
	}

feed:
	for i := range templates {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if err := parent.Err(); err != nil {
		return nil, err
	}

	var out []T
	for _, result := range results {
		if result.err != nil {
			return nil, result.err
		}
		out = append(out, result.occurrences...)
	}
	return out, nil
}
