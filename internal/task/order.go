package task

import "math/rand/v2"

// Shuffle returns a uniform random permutation of [0, n) drawn from rng.
// Every call allocates a fresh slice. It uses Fisher-Yates: position i,
// walking down from n-1, swaps with a position drawn uniformly from [0, i].
func Shuffle(rng *rand.Rand, n int) []int {
	if n <= 0 {
		return []int{}
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
