package asset

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Input is one asset submitted to DecodeBatch. When Data is nil the buffer
// is read from Path by the worker that decodes it.
type Input struct {
	AssetID string
	Path    string
	Data    []byte
}

func (in Input) load() ([]byte, error) {
	if in.Data != nil || in.Path == "" {
		return in.Data, nil
	}
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	return data, nil
}

// DecodeBatch decodes inputs concurrently. results[i] always belongs to
// inputs[i]. Assets not yet started when ctx is cancelled come back invalid
// with the context error.
func DecodeBatch(ctx context.Context, inputs []Input, opts ...Option) []Result {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	workers := o.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(inputs))

	results := make([]Result, len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = decodeInput(ctx, inputs[idx], o)
			}
		}()
	}

	for idx := range inputs {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			results[idx] = invalid(Result{AssetID: inputs[idx].AssetID}, ctx.Err())
		}
	}
	close(jobs)
	wg.Wait()

	o.log.Debug("batch decoded", zap.Int("assets", len(inputs)), zap.Int("workers", workers))
	return results
}

func decodeInput(ctx context.Context, in Input, o options) Result {
	if err := ctx.Err(); err != nil {
		return invalid(Result{AssetID: in.AssetID}, err)
	}
	data, err := in.load()
	if err != nil {
		o.log.Warn("asset decode failed", zap.String("asset_id", in.AssetID), zap.Error(err))
		return invalid(Result{AssetID: in.AssetID}, err)
	}
	return decode(in.AssetID, data, o)
}
