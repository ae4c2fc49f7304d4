package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 encapsulates a float64 for non-locking atomic operations.
// The value is kept as its IEEE-754 bits so the sync/atomic uint64 operations
// apply directly, without unsafe pointer casts.
type AtomicFloat64 struct {
	bits uint64
}

// NewAtomicFloat64 encapsulates a float64 for atomic operations.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	return &AtomicFloat64{
		bits: math.Float64bits(val),
	}
}

// AtomicRead atomically reads the float64.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(atomic.LoadUint64(&af.bits))
}

// AtomicAdd makes a single attempt to add @addend. If the value changed
// between the read and the swap, nothing is written and succeeded is false;
// the caller decides whether to retry, drop or recompute.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := atomic.LoadUint64(&af.bits)
	newVal = math.Float64frombits(old) + addend
	succeeded = atomic.CompareAndSwapUint64(&af.bits, old, math.Float64bits(newVal))
	return
}

// AtomicSet unconditionally stores @val.
func (af *AtomicFloat64) AtomicSet(val float64) {
	atomic.StoreUint64(&af.bits, math.Float64bits(val))
}

// AtomicMin lowers the value to @val if @val is smaller, retrying on contention.
// It returns the value held afterwards.
func (af *AtomicFloat64) AtomicMin(val float64) float64 {
	for {
		old := atomic.LoadUint64(&af.bits)
		cur := math.Float64frombits(old)
		if cur <= val {
			return cur
		}
		if atomic.CompareAndSwapUint64(&af.bits, old, math.Float64bits(val)) {
			return val
		}
	}
}
