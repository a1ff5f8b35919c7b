package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// sampler lets through num of every den events. A zero ratio lets
// everything through.
type sampler struct {
	ratio atomic.Uint64 // num<<32 | den
	seen  atomic.Uint64
}

func newSampler(num, den int) *sampler {
	s := &sampler{}
	s.Set(num, den)
	return s
}

func (s *sampler) Set(num, den int) {
	var packed uint64
	if num > 0 && den > 0 {
		packed = uint64(min(num, den))<<32 | uint64(uint32(den))
	}
	s.ratio.Store(packed)
	s.seen.Store(0)
}

func (s *sampler) Allow() bool {
	r := s.ratio.Load()
	num, den := r>>32, r&0xffffffff
	if num == 0 || den == 0 {
		return true
	}
	return (s.seen.Add(1)-1)%den < num
}

// parseRatio accepts "num/den" or a bare "den" meaning 1/den.
func parseRatio(ratio string) (int, int) {
	ratio = strings.TrimSpace(ratio)
	if num, den, ok := strings.Cut(ratio, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil {
			return n, d
		}
		return 0, 0
	}
	if d, err := strconv.Atoi(ratio); err == nil && d > 0 {
		return 1, d
	}
	return 0, 0
}
