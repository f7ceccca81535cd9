package control_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-canvas/api"
	"github.com/momentics/hioload-canvas/control"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := control.NewMetrics(control.WithRegistry(reg), control.WithNamespace("test"))

	m.FrameSent(100, true, 4, 4)
	m.FrameSent(20, false, 1, 4)
	m.KeyReceived()
	m.Handshake("upgrade")
	m.Handshake("page")
	m.SessionStarted()
	m.Teardown(api.IOErrorResult)
	m.SetState(api.StateEstablished)

	n, err := testutil.GatherAndCount(reg, "test_frames_sent_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = testutil.GatherAndCount(reg, "test_frame_changed_pixel_ratio")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expected := `
# HELP test_session_teardowns_total Established sessions torn down, by reason
# TYPE test_session_teardowns_total counter
test_session_teardowns_total{reason="io_error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_session_teardowns_total"))

	expected = `
# HELP test_acceptor_state Acceptor state: 0 listening, 1 handshaking, 2 established, 3 closed
# TYPE test_acceptor_state gauge
test_acceptor_state 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_acceptor_state"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *control.Metrics
	assert.NotPanics(t, func() {
		m.FrameSent(1, false, 0, 1)
		m.KeyReceived()
		m.Handshake("page")
		m.SessionStarted()
		m.Teardown(api.ExitResult)
		m.SetState(api.StateClosed)
	})
}

func TestAdminRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := control.NewMetrics(control.WithRegistry(reg))
	m.KeyReceived()

	probes := control.NewDebugProbes()
	probes.RegisterProbe("state", func() any { return api.StateListening.String() })
	control.RegisterPlatformProbes(probes)

	srv := httptest.NewServer(control.NewAdminRouter(reg, probes))
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "hioload_canvas_keystrokes_total 1")

	code, body = get("/debug/state")
	assert.Equal(t, http.StatusOK, code)
	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &state))
	assert.Equal(t, "listening", state["state"])
	assert.Contains(t, state, "platform.cpus")

	code, _ = get("/nope")
	assert.Equal(t, http.StatusNotFound, code)
}
