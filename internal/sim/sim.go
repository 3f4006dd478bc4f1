// Package sim replays a scene through the batching structures, frame by
// frame, and reports how well instances were batched.
package sim

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/andrew-d/drawbatch"
	"github.com/andrew-d/drawbatch/internal/scene"
)

// Instance is the per-item payload batched by the simulation.
type Instance struct {
	ID        int
	Transform [4]float32
}

// Report summarizes one scene replay.
type Report struct {
	Scene  string
	Frames int

	// Instances is the number of instances submitted over all frames.
	Instances int
	// DrawCalls is the number of non-empty batches the store produced.
	DrawCalls int
	// SortedDrawCalls is the number of runs the pre-sorted path produced.
	SortedDrawCalls int
	// DuplicateRecords sums, over all frames, the records the scan window
	// failed to merge.
	DuplicateRecords int
	// PrunedKeys is the number of pipelines dropped by pruning.
	PrunedKeys int
	// PeakPipelines is the largest number of pipelines held at once.
	PeakPipelines int

	Elapsed time.Duration
}

// InstancesPerDraw is the average batch size of the store path.
func (r Report) InstancesPerDraw() float64 {
	if r.DrawCalls == 0 {
		return 0
	}
	return float64(r.Instances) / float64(r.DrawCalls)
}

// Runner replays scenes.
type Runner struct {
	logger    zerolog.Logger
	storeLogs *drawbatch.Logger
}

// NewRunner returns a Runner that logs progress to logger and passes
// storeLogs to the stores and collectors it creates. storeLogs may be nil.
func NewRunner(logger zerolog.Logger, storeLogs *drawbatch.Logger) *Runner {
	return &Runner{
		logger:    logger.With().Str("component", "sim").Logger(),
		storeLogs: storeLogs,
	}
}

type drawKey struct {
	pipeline, mesh string
}

type job struct {
	pipeline  string
	mesh      string
	instances int
}

type frameStore = drawbatch.Store[string, string, Instance, *drawbatch.Slice[Instance]]

// Run replays every frame of sc. Each frame runs sc.Producers goroutines
// that submit instances to a Collector, drains it into a Store, counts the
// draw calls, and clears or prunes the store. It stops early if ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context, sc *scene.Scene) (Report, error) {
	logger := r.logger.With().Str("scene", sc.Name).Logger()
	start := time.Now()

	store := drawbatch.NewSliceStore[string, string, Instance](
		drawbatch.WithScanWindow(sc.Window()),
		drawbatch.WithSizeHint(len(sc.Pipelines)),
		drawbatch.WithLogger(r.storeLogs),
	)
	collector := drawbatch.NewCollector[string, string, Instance](
		drawbatch.WithCollectorLogger(r.storeLogs),
	)
	grouper := drawbatch.NewGrouper[drawKey, Instance](0)

	rep := Report{Scene: sc.Name, Frames: sc.Frames}
	var sorted []keyedInstance

	for frame := range sc.Frames {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("scene %s: frame %d: %w", sc.Name, frame, err)
		}

		jobs := visibleJobs(sc, frame)
		if err := r.produce(ctx, sc, frame, jobs, collector); err != nil {
			return rep, fmt.Errorf("scene %s: frame %d: %w", sc.Name, frame, err)
		}

		submitted := collector.Drain(store)
		draws := countDraws(store)
		dups := store.Stats().DuplicateRecords

		sorted = sortedInstances(sorted[:0], jobs)
		sortedDraws := 0
		drawbatch.Group(grouper, func(yield func(drawKey, Instance) bool) {
			for _, ki := range sorted {
				if !yield(ki.key, ki.instance) {
					return
				}
			}
		}, func(drawKey, []Instance) {
			sortedDraws++
		})

		rep.Instances += submitted
		rep.DrawCalls += draws
		rep.SortedDrawCalls += sortedDraws
		rep.DuplicateRecords += dups
		rep.PeakPipelines = max(rep.PeakPipelines, store.Len())

		logger.Debug().
			Int("frame", frame).
			Int("instances", submitted).
			Int("draws", draws).
			Int("sorted_draws", sortedDraws).
			Int("duplicates", dups).
			Msg("frame batched")

		// Pruning before the clear drops pipelines that drew nothing this
		// frame; after it every pipeline would look idle.
		if sc.PruneEvery > 0 && (frame+1)%sc.PruneEvery == 0 {
			rep.PrunedKeys += store.Prune()
		}
		store.ClearInner()
	}

	rep.Elapsed = time.Since(start)
	logger.Info().
		Int("frames", rep.Frames).
		Int("instances", rep.Instances).
		Int("draws", rep.DrawCalls).
		Int("sorted_draws", rep.SortedDrawCalls).
		Int("pruned", rep.PrunedKeys).
		Dur("elapsed", rep.Elapsed).
		Msg("scene replayed")
	return rep, nil
}

// produce fans the frame's jobs out over the scene's producers. Producer p
// handles every job whose index is p modulo the producer count, submitting
// its instances in chunks.
func (r *Runner) produce(ctx context.Context, sc *scene.Scene, frame int, jobs []job, c *drawbatch.Collector[string, string, Instance]) error {
	g, ctx := errgroup.WithContext(ctx)
	for p := range sc.Producers {
		g.Go(func() error {
			chunk := make([]Instance, 0, sc.ChunkSize)
			for i := p; i < len(jobs); i += sc.Producers {
				if err := ctx.Err(); err != nil {
					return err
				}
				j := jobs[i]
				for id := range j.instances {
					chunk = append(chunk, newInstance(frame, id))
					if len(chunk) == sc.ChunkSize {
						c.Submit(j.pipeline, j.mesh, chunk)
						chunk = chunk[:0]
					}
				}
				c.Submit(j.pipeline, j.mesh, chunk)
				chunk = chunk[:0]
			}
			return nil
		})
	}
	return g.Wait()
}

func visibleJobs(sc *scene.Scene, frame int) []job {
	var jobs []job
	for _, p := range sc.Pipelines {
		for _, m := range p.Meshes {
			if m.Visible(frame) && m.Instances > 0 {
				jobs = append(jobs, job{pipeline: p.Name, mesh: m.Name, instances: m.Instances})
			}
		}
	}
	return jobs
}

func newInstance(frame, id int) Instance {
	return Instance{
		ID:        id,
		Transform: [4]float32{float32(id), float32(frame), 0, 1},
	}
}

// countDraws counts the batches a draw submitter would issue. Records kept
// from earlier frames but empty in this one issue nothing.
func countDraws(store *frameStore) int {
	draws := 0
	for _, records := range store.All() {
		for _, instances := range records {
			if instances.Len() > 0 {
				draws++
			}
		}
	}
	return draws
}

type keyedInstance struct {
	key      drawKey
	instance Instance
}

// sortedInstances appends the frame's instances to dst sorted by draw key,
// as an upstream extraction stage with pre-sorting would hand them over.
func sortedInstances(dst []keyedInstance, jobs []job) []keyedInstance {
	for _, j := range jobs {
		for id := range j.instances {
			dst = append(dst, keyedInstance{
				key:      drawKey{pipeline: j.pipeline, mesh: j.mesh},
				instance: Instance{ID: id},
			})
		}
	}
	slices.SortStableFunc(dst, func(a, b keyedInstance) int {
		return cmp.Or(
			cmp.Compare(a.key.pipeline, b.key.pipeline),
			cmp.Compare(a.key.mesh, b.key.mesh),
		)
	})
	return dst
}
