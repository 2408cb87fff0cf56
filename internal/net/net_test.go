package net

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareLinkRoundTrip(t *testing.T) {
	link := ShareLink("192.168.1.20", 8080, "abc-123")
	assert.Equal(t, "canvasboard://192.168.1.20:8080/abc-123", link)

	base, id, err := ParseShareLink(link)
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:8080", base)
	assert.Equal(t, "abc-123", id)
}

func TestParseShareLinkWithoutSession(t *testing.T) {
	base, id, err := ParseShareLink("canvasboard://localhost:9000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", base)
	assert.Empty(t, id)
}

func TestParseShareLinkRejects(t *testing.T) {
	for _, link := range []string{"", "http://x:1", "canvasboard://nohost"} {
		_, _, err := ParseShareLink(link)
		assert.Error(t, err, link)
	}
}

func TestOutgoingIPNotEmpty(t *testing.T) {
	assert.NotEmpty(t, OutgoingIP())
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := Listen(0)
	require.NoError(t, err)
	port := Port(ln)
	require.NotZero(t, port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
	}()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/", port))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
