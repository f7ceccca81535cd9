// Package pool
// Author: momentics <momentics@gmail.com>
//
// Generic sync.Pool wrappers reused on the frame send path: payload
// assembly buffers and PNG encoder scratch state.
package pool
