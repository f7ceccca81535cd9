//go:build !(linux || darwin)

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "net"

// pendingBytes is unsupported here; Available falls back to a timed peek.
func pendingBytes(net.Conn) (int, bool, error) {
	return 0, false, nil
}
