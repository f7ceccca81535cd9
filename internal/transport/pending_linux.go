//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "golang.org/x/sys/unix"

// SIOCINQ: bytes in the TCP receive queue.
const pendingIoctl = unix.TIOCINQ
