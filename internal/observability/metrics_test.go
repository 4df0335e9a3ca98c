package observability_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverfence/serverfence/internal/observability"
)

func TestCheckMetrics_RecordAndScrape(t *testing.T) {
	t.Parallel()

	telemetry, err := observability.NewTelemetry()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = telemetry.Shutdown(context.Background())
	})

	metrics, err := observability.NewCheckMetrics(telemetry.Meter())
	require.NoError(t, err)

	ctx := context.Background()
	done := metrics.TrackInflight(ctx)
	metrics.RecordFile(ctx, "client-eligible", 2*time.Millisecond)
	metrics.RecordViolation(ctx, "serverOnlyImport", "UnconfinedRead")
	done()

	srv, err := observability.NewDiagnosticsServer("127.0.0.1:0", telemetry)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})

	body := httpGet(t, "http://"+srv.Addr()+"/metrics")
	assert.Contains(t, body, "serverfence_files_total")
	assert.Contains(t, body, "serverfence_violations_total")

	health := httpGet(t, "http://"+srv.Addr()+"/healthz")
	assert.Equal(t, "ok\n", health)
}

func httpGet(t *testing.T, url string) string {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return string(raw)
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	var buf strings.Builder

	logger := observability.NewLogger(&buf, false, false)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()

	verbose := observability.NewLogger(&buf, true, false)
	verbose.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")

	buf.Reset()

	quiet := observability.NewLogger(&buf, true, true)
	quiet.Info("suppressed")
	quiet.Error("kept")
	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "kept")

	assert.True(t, quiet.Enabled(context.Background(), slog.LevelError))
}
