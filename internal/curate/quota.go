package curate

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrNegativeTotal = errors.New("quota total must not be negative")
	ErrInvalidShare  = errors.New("quota share must be a finite non-negative number")
	ErrNoShares      = errors.New("no positive shares to distribute a non-zero total over")
)

// shareTolerance is how far a share table may sum from 1 and still be
// taken at face value.
const shareTolerance = 0.01

// Allocate splits total across the keys of shares using largest-remainder
// rounding. The result has every key of shares and sums to exactly total.
//
// Each key starts from floor(x_k) with x_k = total*r_k. Tables whose sum
// is off from 1 by more than shareTolerance are rescaled first. Missing
// units go to the largest fractional parts, equal fractions resolved in
// ascending key order; surplus units are taken back from the smallest.
func Allocate[K cmp.Ordered](total int, shares map[K]float64) (map[K]int, error) {
	if total < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeTotal, total)
	}

	var sum float64
	for k, r := range shares {
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: key %v has %v", ErrInvalidShare, k, r)
		}
		sum += r
	}

	out := make(map[K]int, len(shares))
	for k := range shares {
		out[k] = 0
	}
	if total == 0 {
		return out, nil
	}
	if sum == 0 {
		return nil, ErrNoShares
	}

	type part struct {
		key  K
		frac float64
	}
	// Tables within shareTolerance of 1 are used as given; anything else is
	// rescaled to sum to 1.
	if math.Abs(sum-1) <= shareTolerance {
		sum = 1
	}
	parts := make([]part, 0, len(shares))
	assigned := 0
	for k, r := range shares {
		x := float64(total) * r / sum
		q := math.Floor(x)
		out[k] = int(q)
		assigned += int(q)
		parts = append(parts, part{key: k, frac: x - q})
	}

	slices.SortFunc(parts, func(a, b part) int {
		if c := cmp.Compare(b.frac, a.frac); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	// Float noise can leave the floors one unit off in either direction.
	// Positive remainders go to the largest fractions, negative ones are
	// taken back from the smallest.
	remainder := total - assigned
	for i := 0; remainder > 0; i = (i + 1) % len(parts) {
		out[parts[i].key]++
		remainder--
	}
	for i := len(parts) - 1; remainder < 0; i-- {
		if i < 0 {
			i = len(parts) - 1
		}
		if out[parts[i].key] > 0 {
			out[parts[i].key]--
			remainder++
		}
	}

	return out, nil
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
