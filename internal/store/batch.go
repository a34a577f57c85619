package store

import (
	"context"
	"fmt"
	"log"
)

// ChunkSize stays well below Firestore's 500-mutation batch ceiling.
const ChunkSize = 400

// ApplyChunked splits writes into sequential atomic batches of at most
// chunkSize mutations. Each chunk commits atomically; the operation as a
// whole does not. A failure after chunk k leaves chunks 1..k committed and
// the rest unapplied — callers accept this trade-off to handle fan-outs of
// arbitrary size.
func ApplyChunked(ctx context.Context, s Store, writes []Write, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}

	total := (len(writes) + chunkSize - 1) / chunkSize
	for i := 0; i < len(writes); i += chunkSize {
		end := i + chunkSize
		if end > len(writes) {
			end = len(writes)
		}

		chunk := i/chunkSize + 1
		if err := s.Apply(ctx, writes[i:end]...); err != nil {
			log.Printf("ApplyChunked: chunk %d/%d failed, earlier chunks remain committed: %v", chunk, total, err)
			return fmt.Errorf("chunk %d/%d: %w", chunk, total, err)
		}
	}
	return nil
}
