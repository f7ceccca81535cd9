package web_test

import (
	"strings"
	"testing"

	"github.com/momentics/hioload-canvas/web"
)

func TestPageSpeaksProtocol(t *testing.T) {
	page := string(web.Page())
	for _, want := range []string{"<canvas", `ws.send("READY")`, `ws.send("EXIT")`, "source-over"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPageReturnsCopy(t *testing.T) {
	a := web.Page()
	a[0] = 'X'
	if web.Page()[0] == 'X' {
		t.Error("Page exposes the embedded bytes")
	}
}
