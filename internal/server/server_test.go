package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pagekit/internal/logging"
)

func newTestRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"),
		[]byte("<html><body><h1>Hello</h1></body></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "site.css"),
		[]byte(".hero{color:red}"), 0644))

	return root
}

func TestServeStaticFile(t *testing.T) {
	srv := New("localhost", 0, newTestRoot(t), false, logging.NopLogger{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/site.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeIndexAtRoot(t *testing.T) {
	srv := New("localhost", 0, newTestRoot(t), false, logging.NopLogger{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := readAll(t, resp)
	assert.Contains(t, body, "<h1>Hello</h1>")
	assert.NotContains(t, body, "WebSocket", "live reload disabled")
}

func TestLiveReloadScriptInjectedIntoHTML(t *testing.T) {
	srv := New("localhost", 0, newTestRoot(t), true, logging.NopLogger{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := readAll(t, resp)
	assert.Contains(t, body, "/__pagekit/reload")
	assert.Less(t, strings.Index(body, "WebSocket"), strings.Index(body, "</body>"),
		"script goes before the closing body tag")
}

func TestLiveReloadScriptNotInjectedIntoCSS(t *testing.T) {
	srv := New("localhost", 0, newTestRoot(t), true, logging.NopLogger{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/site.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotContains(t, readAll(t, resp), "WebSocket")
}

func TestPathTraversalRejected(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(root), "secret.txt"),
		[]byte("secret"), 0644))

	srv := New("localhost", 0, root, false, logging.NopLogger{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/../secret.txt", nil)
	require.NoError(t, err)
	req.URL.Path = "/../secret.txt"
	req.URL.RawPath = ""

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotContains(t, readAll(t, resp), "secret")
}

func TestNotifyReloadReachesClient(t *testing.T) {
	srv := New("localhost", 0, newTestRoot(t), true, logging.NopLogger{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/__pagekit/reload"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return srv.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	srv.NotifyReload()

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)
	assert.Equal(t, "reload", string(data))
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()

	var b strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		b.Write(buf[:n])
		if err != nil {
			break
		}
	}

	return b.String()
}
