package utils

import (
	"sync/atomic"
	"unsafe"
)

// CircularBuffer is a lock-free ring keeping the most recent items added.
// Writers never block; readers see a consistent snapshot of the newest
// entries.
type CircularBuffer struct {
	data  []unsafe.Pointer
	size  int32
	head  int32
	count int32
}

func NewCircularBuffer(size int) *CircularBuffer {
	return &CircularBuffer{
		data: make([]unsafe.Pointer, size),
		size: int32(size),
	}
}

func (cb *CircularBuffer) Add(item any) {
	pos := atomic.AddInt32(&cb.head, 1) - 1
	index := pos % cb.size
	if pos >= cb.size {
		atomic.AddInt32(&cb.count, -1)
	}

	atomic.StorePointer(&cb.data[index], unsafe.Pointer(&item))
	atomic.AddInt32(&cb.count, 1)
}

// GetAll returns the retained items, oldest first.
func (cb *CircularBuffer) GetAll() []any {
	count := atomic.LoadInt32(&cb.count)
	if count == 0 {
		return nil
	}

	result := make([]any, count)
	head := atomic.LoadInt32(&cb.head)
	start := head - count

	for i := int32(0); i < count; i++ {
		pos := (start + i) % cb.size
		if pos < 0 {
			pos += cb.size
		}
		ptr := atomic.LoadPointer(&cb.data[pos])
		if ptr != nil {
			result[i] = *(*any)(ptr)
		}
	}

	return result
}
