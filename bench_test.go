package drawbatch

import (
	"cmp"
	"slices"
	"testing"
)

type instance struct {
	pipeline, mesh int
	transform      [16]float32
}

func benchInstances(n, pipelines, meshes int) []instance {
	out := make([]instance, n)
	for i := range out {
		out[i] = instance{pipeline: i % pipelines, mesh: (i / pipelines) % meshes}
	}
	return out
}

func BenchmarkStore_Frame(b *testing.B) {
	instances := benchInstances(10_000, 8, 6)
	s := NewSliceStore[int, int, [16]float32]()

	draws := 0
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		for i := range instances {
			s.InsertSlice(instances[i].pipeline, instances[i].mesh, instances[i].transform)
		}
		for _, records := range s.All() {
			for range records {
				draws++
			}
		}
		s.ClearInner()
	}
	b.ReportMetric(float64(draws)/float64(b.N), "draws/op")
}

func BenchmarkGrouper_Frame(b *testing.B) {
	instances := benchInstances(10_000, 8, 6)
	slices.SortFunc(instances, func(a, b instance) int {
		return cmp.Or(cmp.Compare(a.pipeline, b.pipeline), cmp.Compare(a.mesh, b.mesh))
	})
	type key struct{ pipeline, mesh int }
	seq := func(yield func(key, [16]float32) bool) {
		for i := range instances {
			if !yield(key{instances[i].pipeline, instances[i].mesh}, instances[i].transform) {
				return
			}
		}
	}
	g := NewGrouper[key, [16]float32](0)

	draws := 0
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		Group(g, seq, func(key, [][16]float32) { draws++ })
	}
	b.ReportMetric(float64(draws)/float64(b.N), "draws/op")
}
