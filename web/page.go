// File: web/page.go
// Package web embeds the browser page that speaks the bridge's wire protocol.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package web

import (
	_ "embed"
)

//go:embed index.html
var indexHTML []byte

// Page returns a copy of the embedded index page.
func Page() []byte {
	return append([]byte(nil), indexHTML...)
}
