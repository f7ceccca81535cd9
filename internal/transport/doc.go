// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket plumbing for the poll-driven bridge: a buffered connection whose
// pending inbound bytes can be probed without blocking. Kernel queue sizes
// come from the receive-queue ioctl (TIOCINQ, FIONREAD) where the platform
// has one; elsewhere a bounded read-deadline peek is used.

package transport
