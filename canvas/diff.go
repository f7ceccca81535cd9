// Package canvas
// Author: momentics <momentics@gmail.com>
//
// Pixel-difference transport. A delta keeps the new color of every changed
// pixel and the Transparent sentinel everywhere else, so the browser can draw
// it over its current picture with plain source-over compositing.

package canvas

// Diff is the outcome of comparing a snapshot with the cached one.
type Diff struct {
	Image   *Snapshot // delta, or the full snapshot when Full is set
	Full    bool
	Changed int // pixels carrying real color data
}

// Delta compares next with prev. When prev is nil or differs in size the
// result is next itself, marked Full.
func Delta(prev, next *Snapshot) Diff {
	if !next.SameSize(prev) {
		return Diff{Image: next, Full: true, Changed: next.Len()}
	}
	out := &Snapshot{width: next.width, height: next.height, colors: make([]uint32, len(next.colors))}
	changed := 0
	for i, c := range next.colors {
		if c != prev.colors[i] {
			out.colors[i] = c
			changed++
		}
	}
	return Diff{Image: out, Changed: changed}
}

// Overlay applies delta on top of base the way the remote display does:
// sentinel pixels keep the base color. A delta of a different size replaces
// base entirely.
func Overlay(base, delta *Snapshot) *Snapshot {
	if !delta.SameSize(base) {
		return FromColors(delta.width, delta.height, delta.colors)
	}
	out := FromColors(base.width, base.height, base.colors)
	for i, c := range delta.colors {
		if c != Transparent {
			out.colors[i] = c
		}
	}
	return out
}

// DiffCache remembers the last snapshot sent to the current client.
// It mirrors what the client has reconstructed as long as no frame is lost.
type DiffCache struct {
	last *Snapshot
}

// Delta computes the frame to send for s without changing the cache.
func (c *DiffCache) Delta(s *Snapshot) Diff {
	return Delta(c.last, s)
}

// Commit records s as the snapshot the client now displays.
func (c *DiffCache) Commit(s *Snapshot) {
	c.last = s
}

// Last returns the cached snapshot, or nil.
func (c *DiffCache) Last() *Snapshot { return c.last }

// Empty reports whether nothing has been sent yet.
func (c *DiffCache) Empty() bool { return c.last == nil }

// Reset forgets the cached snapshot.
func (c *DiffCache) Reset() { c.last = nil }
