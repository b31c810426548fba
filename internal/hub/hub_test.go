package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := r.ReadString('\n')
		ch <- result{line, err}
	}()
	select {
	case res := <-ch:
		require.NoError(t, res.err)
		return strings.TrimRight(res.line, "\n")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out reading stream")
		return ""
	}
}

func TestHubStreamsBroadcasts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(nil)
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)
	assert.Equal(t, ": connected", readLine(t, body))
	assert.Equal(t, "", readLine(t, body))

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast(map[string]string{"type": "graph_rebuilt"})
	assert.Equal(t, `data: {"type":"graph_rebuilt"}`, readLine(t, body))
}

func TestForward(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(nil)
	events := make(chan string, 2)
	events <- "a"
	events <- "b"
	close(events)

	Forward(ctx, h, events)
	assert.Len(t, h.broadcast, 2)
}

func TestRunStopsClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New(nil)
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 0, h.ClientCount())
}
