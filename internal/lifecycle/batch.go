package lifecycle

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// BatchInserter writes generated rows through the store in fixed-size
// chunks so a large dataset never turns into one oversized statement.
type BatchInserter struct {
	store     Store
	chunkSize int
	log       zerolog.Logger
}

func NewBatchInserter(store Store, chunkSize int, log zerolog.Logger) *BatchInserter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	return &BatchInserter{store: store, chunkSize: chunkSize, log: log}
}

// InsertAll walks the dataset in the given entity order and pushes every
// entity's rows chunk by chunk. It returns the per-entity inserted counts
// and fails on the first chunk whose reported row count falls short of what
// was submitted.
func (b *BatchInserter) InsertAll(ctx context.Context, d *Dataset, order []EntityType) (Counts, error) {
	inserted := make(Counts, entityCount)
	for _, e := range AllEntities() {
		inserted[e] = 0
	}

	for _, e := range order {
		n, err := b.insertEntity(ctx, e, d.Rows(e))
		if err != nil {
			return nil, err
		}
		inserted[e] = n
	}
	return inserted, nil
}

func (b *BatchInserter) insertEntity(ctx context.Context, e EntityType, rows [][]any) (int64, error) {
	var total int64
	for start := 0; start < len(rows); start += b.chunkSize {
		end := start + b.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		n, err := b.store.CopyRows(ctx, e, chunk)
		if err != nil {
			return 0, classify("seed", e.Key(), err)
		}
		if n != int64(len(chunk)) {
			return 0, &Error{
				Code:   CodeInternal,
				Op:     "seed",
				Entity: e.Key(),
				Err:    fmt.Errorf("bulk insert wrote %d of %d rows", n, len(chunk)),
			}
		}
		total += n

		b.log.Debug().
			Str("entity", e.Key()).
			Int("chunk_rows", len(chunk)).
			Int64("total_rows", total).
			Msg("batch inserted")
	}
	return total, nil
}
