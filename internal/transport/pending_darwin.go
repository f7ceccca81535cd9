//go:build darwin

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "golang.org/x/sys/unix"

const pendingIoctl = unix.FIONREAD
