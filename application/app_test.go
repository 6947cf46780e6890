package application

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/radiator-exporter/testutil"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func writeConfig(t *testing.T, mgmtPort, wwwPort int) string {
	t.Helper()
	content := fmt.Sprintf(`
[www]
bind_address = "127.0.0.1"
port = %d

[radiator]
target = "127.0.0.1"
mgmt_port = %d
username = "monitor"
password = "secret"

[logger]
level = "warn"
enable_console = true

[[metrics]]
metric = "radiator_requests"
kind = "counter"
unit = "requests"
help = "Requests processed"

  [[metrics.samples]]
  statistic = "Access requests"
    [metrics.samples.labels]
    type = "access"
`, wwwPort, mgmtPort)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSetup_MissingConfigFile(t *testing.T) {
	app := New(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, app.Setup())
}

func TestApplication_EndToEnd(t *testing.T) {
	srv := testutil.NewMgmtServer(t)
	srv.Respond("STATS .", "Access requests:5\x01Accounting requests:2")

	wwwPort := freePort(t)
	app := New(writeConfig(t, srv.Port(), wwwPort)).WithVersion("test")

	require.NoError(t, app.Setup())
	require.NoError(t, app.Start())
	defer app.gracefulShutdown()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", wwwPort))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `radiator_requests_total{type="access"} 5`)
	assert.Contains(t, string(body), "# EOF\n")

	// The scrape ran over the fake backend.
	assert.Contains(t, srv.Commands(), "STATS .")
}

func TestStart_BackendUnreachableIsFatal(t *testing.T) {
	deadPort := freePort(t) // nothing listens here anymore
	app := New(writeConfig(t, deadPort, freePort(t)))

	require.NoError(t, app.Setup())
	defer app.gracefulShutdown()

	err := app.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial connection failed")
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv := testutil.NewMgmtServer(t)
	app := New(writeConfig(t, srv.Port(), freePort(t)))

	done := make(chan error, 1)
	go func() {
		done <- app.Run()
	}()

	// Give startup a moment, then trigger shutdown programmatically.
	time.Sleep(300 * time.Millisecond)
	app.Cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not shut down")
	}
}
