// Package chance isolates randomness used by the dialogue engine so tests can
// pin template choice, sampling and promotional mentions.
package chance

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source yields random numbers. Implementations must be safe for concurrent use.
type Source interface {
	// IntN returns a value in [0, n). n is always > 0.
	IntN(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// Rand is the production Source: a PCG generator behind a mutex.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a Rand seeded with seed, or with the clock when seed is zero.
func New(seed uint64) *Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN implements Source.
func (r *Rand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.IntN(n)
}

// Float64 implements Source.
func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()
}

// Fixed replays scripted values in order, wrapping around when exhausted.
// IntN reduces each scripted int modulo n. Empty scripts yield zero.
type Fixed struct {
	mu     sync.Mutex
	Ints   []int
	Floats []float64
	ni, nf int
}

// IntN implements Source.
func (f *Fixed) IntN(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Ints) == 0 {
		return 0
	}
	v := f.Ints[f.ni%len(f.Ints)]
	f.ni++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 implements Source.
func (f *Fixed) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Floats) == 0 {
		return 0
	}
	v := f.Floats[f.nf%len(f.Floats)]
	f.nf++
	return v
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](src Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[src.IntN(len(items))], true
}

// Sample returns up to k distinct elements of items, drawn without replacement.
// items is not modified.
func Sample[T any](src Source, items []T, k int) []T {
	if k > len(items) {
		k = len(items)
	}
	if k <= 0 {
		return nil
	}
	pool := append([]T(nil), items...)
	for i := 0; i < k; i++ {
		j := i + src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// Chance reports true with probability p. Non-positive p is never true.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	return src.Float64() < p
}
