package pipeline

import (
	"context"
	"fmt"
	"math"

	"pitch-sieve/internal/logger"
	"pitch-sieve/internal/video"

	"golang.org/x/sync/errgroup"
)

// ShardDeps builds the per-shard collaborators. Every shard gets its own
// sink, row logger and detector; nothing is shared across the seam.
type ShardDeps func(shard int) (Deps, func() error, error)

// Range is a half-open time range [StartSec, EndSec).
type Range struct {
	StartSec float64
	EndSec   float64
}

// SplitRange divides [start, end) into n contiguous ranges of equal length.
func SplitRange(start, end float64, n int) []Range {
	if n < 1 {
		n = 1
	}
	step := (end - start) / float64(n)
	ranges := make([]Range, n)
	for i := range n {
		ranges[i] = Range{StartSec: start + float64(i)*step, EndSec: start + float64(i+1)*step}
	}
	ranges[n-1].EndSec = end
	return ranges
}

// RunSharded processes locator as n independent time ranges in parallel.
// Each shard opens its own source and carries its own State, so transition
// and motion comparisons never cross a shard boundary. All sources are
// opened before any work starts. The first shard error cancels the rest.
func RunSharded(ctx context.Context, open video.Opener, locator string, opts Options, n int, build ShardDeps, log logger.Logger) (Summary, error) {
	if log == nil {
		log = logger.Nop()
	}
	if n < 1 {
		n = 1
	}

	sources := make([]video.Source, 0, n)
	defer func() {
		for _, src := range sources {
			src.Close()
		}
	}()
	for i := range n {
		src, err := open(locator)
		if err != nil {
			return Summary{}, fmt.Errorf("pipeline: shard %d: %w", i, err)
		}
		sources = append(sources, src)
	}

	meta := sources[0].Metadata()
	if meta.FrameCount <= 0 {
		return Summary{}, video.ErrNoFrames
	}

	end := meta.DurationSec
	if opts.EndSec > 0 && opts.EndSec < end {
		end = opts.EndSec
	}
	if end <= opts.StartSec {
		return Summary{}, fmt.Errorf("pipeline: empty range [%.2f, %.2f)", opts.StartSec, end)
	}

	ranges := SplitRange(opts.StartSec, end, n)
	results := make([]Summary, n)

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		shardOpts := opts
		shardOpts.StartSec = r.StartSec
		shardOpts.EndSec = r.EndSec
		if opts.FrameLimit > 0 {
			shardOpts.FrameLimit = int(math.Ceil(float64(opts.FrameLimit) / float64(n)))
		}

		g.Go(func() error {
			deps, release, err := build(i)
			if err != nil {
				return fmt.Errorf("pipeline: shard %d: %w", i, err)
			}
			if release != nil {
				defer release()
			}

			ex, err := NewExtractor(sources[i], shardOpts, deps)
			if err != nil {
				return fmt.Errorf("pipeline: shard %d: %w", i, err)
			}

			log.Debug(component, "shard started", map[string]interface{}{
				"shard":     i,
				"start_sec": r.StartSec,
				"end_sec":   r.EndSec,
			})

			sum, err := ex.Run(gctx)
			results[i] = sum
			if err != nil {
				return fmt.Errorf("pipeline: shard %d: %w", i, err)
			}
			return nil
		})
	}

	err := g.Wait()

	var total Summary
	for _, s := range results {
		total.Merge(s)
	}
	if len(results) > 0 {
		total.RunID = results[0].RunID
	}
	return total, err
}
