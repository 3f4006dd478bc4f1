package drawbatch

import (
	"iter"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Range struct {
	// [Lower, Upper)
	Lower, Upper int
}

func randomRanges(t *testing.T, upperBound int) []Range {
	seed := time.Now().UnixMilli()
	t.Logf("random seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	half := 500 + rng.Intn(upperBound-1000)
	lowerQuarter := 100 + rng.Intn(half-100)
	upperQuarter := (half + 100) + rng.Intn(upperBound-(half+100))

	t.Logf("ranges: [0, %d), [%d, %d), [%d, %d), [%d, %d)",
		lowerQuarter,
		lowerQuarter, half,
		half, upperQuarter,
		upperQuarter, upperBound,
	)
	return []Range{
		{0, lowerQuarter},
		{lowerQuarter, half},
		{half, upperQuarter},
		{upperQuarter, upperBound},
	}
}

func TestCollector(t *testing.T) {
	const upperBound = 10_000

	ranges := randomRanges(t, upperBound)
	c := NewCollector[int, int, int](WithCollectorCapacity(64, 1024))
	store := NewSliceStore[int, int, int]()

	// Submit numbers from every range concurrently, in chunks of up to 10,
	// keyed by (number%7, number%3).
	var wg sync.WaitGroup
	submit := func(start, end int) {
		defer wg.Done()

		var chunk []int
		for i := start; i < end; {
			remaining := min(end-i, 10)
			chunk = chunk[:0]
			for j := i; j < i+remaining; j++ {
				chunk = append(chunk, j)
			}
			i += remaining

			// Split the chunk by key and reuse the slice afterwards.
			for pk := range 7 {
				for sk := range 3 {
					var keyed []int
					for _, n := range chunk {
						if n%7 == pk && n%3 == sk {
							keyed = append(keyed, n)
						}
					}
					c.Submit(pk, sk, keyed)
				}
			}
		}
	}

	wg.Add(len(ranges))
	for _, rr := range ranges {
		go submit(rr.Lower, rr.Upper)
	}
	wg.Wait()

	require.Equal(t, upperBound, c.Pending())
	require.Equal(t, upperBound, c.Drain(store))
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, upperBound, store.Count())

	allNums := make(map[int]bool, upperBound)
	for pk, records := range store.All() {
		for sk, items := range records {
			for _, num := range items.Items() {
				if num%7 != pk || num%3 != sk {
					t.Errorf("number %d filed under (%d, %d)", num, pk, sk)
				}
				if allNums[num] {
					t.Errorf("duplicate number: %d", num)
					continue
				}
				allNums[num] = true
			}
		}
	}
	for i := range upperBound {
		if !allNums[i] {
			t.Errorf("missing number: %d", i)
		}
	}

	// 7 primary keys with 3 secondary keys each all fit the scan window.
	st := store.Stats()
	assert.Equal(t, 7, st.PrimaryKeys)
	assert.Equal(t, 21, st.Records)
	assert.Equal(t, 0, st.DuplicateRecords)
}

func TestCollector_SubmissionOrder(t *testing.T) {
	c := NewCollector[string, string, int]()
	store := NewSliceStore[string, string, int]()

	items := []int{1, 2}
	c.Submit("p", "s", items)
	items[0], items[1] = 3, 4
	c.Submit("p", "s", items)
	c.Submit("p", "s", nil)

	assert.Equal(t, 4, c.Drain(store))

	var got []int
	for _, coll := range store.Records("p") {
		got = append(got, coll.Items()...)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestCollector_DrainReusesBuffers(t *testing.T) {
	c := NewCollector[int, int, int]()
	store := NewSliceStore[int, int, int]()

	for frame := range 3 {
		c.Submit(1, 1, []int{frame, frame})
		c.Submit(2, 1, []int{frame})
		require.Equal(t, 3, c.Drain(store), "frame %d", frame)

		assert.Equal(t, 3, store.Count())
		store.ClearInner()
	}

	assert.Equal(t, 0, c.Drain(store))
	assert.Equal(t, 2, store.Len())
}

func TestCollector_SubmitDuringDrain(t *testing.T) {
	c := NewCollector[int, int, int]()
	c.Submit(1, 1, []int{1})

	// An inserter that submits more work while being drained into.
	store := NewSliceStore[int, int, int]()
	resubmit := &submittingInserter{store: store, c: c}

	assert.Equal(t, 1, c.Drain(resubmit))
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, 1, c.Drain(store))
	assert.Equal(t, 2, store.Count())
}

type submittingInserter struct {
	store *Store[int, int, int, *Slice[int]]
	c     *Collector[int, int, int]
}

func (s *submittingInserter) Insert(pk, sk int, items iter.Seq[int]) {
	s.store.Insert(pk, sk, items)
	s.c.Submit(pk, sk, []int{2})
}
