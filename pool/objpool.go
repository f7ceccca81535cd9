// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package pool

import (
	"bytes"
	"sync"
)

// ObjectPool is a generic object pool.
type ObjectPool[T any] interface {
	Get() T
	Put(T)
}

// SyncPool wraps sync.Pool for generic usage.
type SyncPool[T any] struct {
	pool  *sync.Pool
	reset func(T)
}

// NewSyncPool creates a new SyncPool with a creator function.
func NewSyncPool[T any](creator func() T) *SyncPool[T] {
	return &SyncPool[T]{
		pool: &sync.Pool{New: func() any { return creator() }},
	}
}

// NewResettingPool creates a SyncPool that calls reset on every object put back.
func NewResettingPool[T any](creator func() T, reset func(T)) *SyncPool[T] {
	sp := NewSyncPool(creator)
	sp.reset = reset
	return sp
}

func (sp *SyncPool[T]) Get() T {
	return sp.pool.Get().(T)
}

func (sp *SyncPool[T]) Put(obj T) {
	if sp.reset != nil {
		sp.reset(obj)
	}
	sp.pool.Put(obj)
}

// NewBufferPool pools bytes.Buffer values used to assemble frame payloads.
func NewBufferPool() *SyncPool[*bytes.Buffer] {
	return NewResettingPool(
		func() *bytes.Buffer { return new(bytes.Buffer) },
		func(b *bytes.Buffer) { b.Reset() },
	)
}
