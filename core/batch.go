package core

import (
	"context"

	"github.com/pkg/errors"
)

// DefaultBatchSize is the number of records written per chunk when no size is configured.
const DefaultBatchSize = 50

// WriteInBatches partitions records into consecutive chunks of at most size records and hands
// them to write one at a time, in order. It stops at the first failing chunk and returns a
// *BatchError; chunks written before the failure stay committed.
// ctx is checked between chunks only, never while a chunk is being written.
// The number of records written is returned in all cases.
func WriteInBatches[T any](ctx context.Context, records []T, size int, write func(context.Context, []T) error) (int, error) {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var written, batches int
	for start := 0; start < len(records); start += size {
		if err := ctx.Err(); err != nil {
			return written, &BatchError{Err: err, Batches: batches, Written: written, Total: len(records)}
		}

		end := start + size
		if end > len(records) {
			end = len(records)
		}
		if err := write(ctx, records[start:end]); err != nil {
			return written, &BatchError{
				Err:     errors.Wrapf(err, "writing batch %d", batches+1),
				Batches: batches,
				Written: written,
				Total:   len(records),
			}
		}
		written += end - start
		batches++
	}
	return written, nil
}
