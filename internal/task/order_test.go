package task_test

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clickplan/internal/task"
)

func TestShuffle_IsPermutation(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(1, 2))

	for n := 0; n <= 12; n++ {
		for range 50 {
			order := task.Shuffle(rng, n)
			require.Len(t, order, n)

			sorted := append([]int(nil), order...)
			sort.Ints(sorted)
			for i, v := range sorted {
				require.Equal(t, i, v, "order %v is not a permutation of [0,%d)", order, n)
			}
		}
	}
}

func TestShuffle_FreshSlicePerCall(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(3, 4))

	a := task.Shuffle(rng, 5)
	b := task.Shuffle(rng, 5)
	a[0] = 99
	assert.NotEqual(t, 99, b[0])
}

func TestShuffle_Uniform(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(42, 7))

	const runs = 60000
	counts := make(map[[3]int]int)
	for range runs {
		o := task.Shuffle(rng, 3)
		counts[[3]int{o[0], o[1], o[2]}]++
	}

	require.Len(t, counts, 6, "every permutation of 3 appears")
	expected := runs / 6
	for perm, c := range counts {
		assert.InDelta(t, expected, c, float64(expected)*0.06, "permutation %v drawn %d times", perm, c)
	}
}

func TestShuffle_Deterministic(t *testing.T) {
	t.Parallel()

	a := task.Shuffle(rand.New(rand.NewPCG(9, 9)), 8)
	b := task.Shuffle(rand.New(rand.NewPCG(9, 9)), 8)
	assert.Equal(t, a, b)
}
