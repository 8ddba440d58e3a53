package extd

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeMetrics(t *testing.T) {
	addr, shutdown, err := serveMetrics(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	shutdown()

	_, err = http.Get("http://" + addr + "/metrics")
	assert.Error(t, err)
}

func TestServeMetrics_PortInUse(t *testing.T) {
	addr, shutdown, err := serveMetrics(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	defer shutdown()

	_, _, err = serveMetrics(context.Background(), addr)
	assert.Error(t, err)
}
