package sim

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-d/drawbatch/internal/scene"
)

func parseScene(t *testing.T, doc string) *scene.Scene {
	t.Helper()
	sc, err := scene.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return sc
}

func TestRun(t *testing.T) {
	sc := parseScene(t, `
name: courtyard
frames: 4
producers: 3
chunk_size: 4
prune_every: 2
pipelines:
  - name: a
    meshes:
      - {name: m1, instances: 10}
      - {name: m2, instances: 5, every: 2}
  - name: b
    meshes:
      - {name: m1, instances: 3, every: 4}
`)

	rep, err := NewRunner(zerolog.Nop(), nil).Run(context.Background(), sc)
	require.NoError(t, err)

	assert.Equal(t, "courtyard", rep.Scene)
	assert.Equal(t, 4, rep.Frames)
	assert.Equal(t, 53, rep.Instances)
	assert.Equal(t, 7, rep.DrawCalls)
	assert.Equal(t, 7, rep.SortedDrawCalls)
	assert.Equal(t, 0, rep.DuplicateRecords)
	// Pipeline b draws nothing on frame 1 and is pruned after it.
	assert.Equal(t, 1, rep.PrunedKeys)
	assert.Equal(t, 2, rep.PeakPipelines)
	assert.InDelta(t, 53.0/7.0, rep.InstancesPerDraw(), 1e-9)
}

func TestRun_NarrowWindowSplitsBatches(t *testing.T) {
	sc := parseScene(t, `
frames: 1
producers: 1
chunk_size: 4
scan_window: 1
pipelines:
  - name: p
    meshes:
      - {name: m1, instances: 8}
      - {name: m2, instances: 8}
      - {name: m3, instances: 8}
`)

	rep, err := NewRunner(zerolog.Nop(), nil).Run(context.Background(), sc)
	require.NoError(t, err)

	// Only m1 is inside the window, so the second chunk of m2 and m3 each
	// start a new batch.
	assert.Equal(t, 24, rep.Instances)
	assert.Equal(t, 5, rep.DrawCalls)
	assert.Equal(t, 3, rep.SortedDrawCalls)
	assert.Equal(t, 2, rep.DuplicateRecords)
}

func TestRun_Cancelled(t *testing.T) {
	sc := parseScene(t, `
pipelines:
  - name: p
    meshes:
      - {name: m, instances: 1}
`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(zerolog.Nop(), nil).Run(ctx, sc)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_Logs(t *testing.T) {
	sc := parseScene(t, `
frames: 2
pipelines:
  - name: p
    meshes:
      - {name: m, instances: 2}
`)
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := NewRunner(logger, nil).Run(context.Background(), sc)
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `"message":"frame batched"`))
	assert.Contains(t, out, `"message":"scene replayed"`)
	assert.Contains(t, out, `"component":"sim"`)
}

func TestReport_InstancesPerDrawWithoutDraws(t *testing.T) {
	assert.Zero(t, Report{}.InstancesPerDraw())
}
