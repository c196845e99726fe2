package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-Closer-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"limit":1}`, string(body))
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"closed":1}`))
	}))
	defer server.Close()

	headers := http.Header{}
	headers.Set("X-Closer-Token", "secret")

	status, body, err := NewHTTPClient().Post(context.Background(), server.URL, headers, []byte(`{"limit":1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, `{"closed":1}`, string(body))
}

func TestHTTPClientPostTruncatesLargeBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(strings.Repeat("x", maxBodyBytes+10)))
	}))
	defer server.Close()

	status, body, err := NewHTTPClient().Post(context.Background(), server.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body, maxBodyBytes)
}

func TestHTTPClientPostErrors(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	status, _, err := NewHTTPClient().Post(context.Background(), url, nil, nil)
	assert.Error(t, err)
	assert.Zero(t, status)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = NewHTTPClient().Post(ctx, "http://example.invalid", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = NewHTTPClient().Post(context.Background(), "://bad-url", nil, nil)
	assert.Error(t, err)
}
