//go:build linux || darwin

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Kernel-reported pending byte count for sockets. The ioctl request number
// differs per platform (pendingIoctl).

package transport

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// pendingBytes asks the kernel how many bytes wait in the socket receive
// queue. ok is false when c is not backed by a file descriptor.
func pendingBytes(c net.Conn) (n int, ok bool, err error) {
	sc, isSys := c.(syscall.Conn)
	if !isSys {
		return 0, false, nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, false, nil
	}
	cerr := raw.Control(func(fd uintptr) {
		n, err = unix.IoctlGetInt(int(fd), pendingIoctl)
	})
	if cerr != nil {
		return 0, true, cerr
	}
	return n, true, err
}
