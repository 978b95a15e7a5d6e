package gen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// candidateBody builds a minimal generateContent reply carrying text.
func candidateBody(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + jsonString(text) + `}]}}]}`
}

func jsonString(s string) string {
	out := `"`
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\\':
			out += `\\`
		default:
			out += string(r)
		}
	}
	return out + `"`
}

// scriptedServer replies with the given status codes in order, returning
// the payload body on 2xx.
func scriptedServer(t *testing.T, statuses []int, payload string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := statuses[len(statuses)-1]
		if calls < len(statuses) {
			status = statuses[calls]
		}
		calls++
		w.WriteHeader(status)
		if status >= 200 && status <= 299 {
			_, _ = w.Write([]byte(payload))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testClient(baseURL string) *Client {
	return NewClient(Config{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		InitialBackoff: time.Millisecond,
	})
}

func TestClient_MissingAPIKey(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.Generate(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestClient_SuccessFirstAttempt(t *testing.T) {
	srv, calls := scriptedServer(t, []int{200}, candidateBody("hello"))

	text, err := testClient(srv.URL).Generate(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 1, *calls)
}

func TestClient_RateLimitedThenSuccess(t *testing.T) {
	// Two 429s followed by a 200 on the third attempt must return the
	// payload with no error.
	srv, calls := scriptedServer(t, []int{429, 429, 200}, candidateBody("eventually"))

	text, err := testClient(srv.URL).Generate(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, "eventually", text)
	assert.Equal(t, 3, *calls)
}

func TestClient_RateLimitExhaustion(t *testing.T) {
	srv, calls := scriptedServer(t, []int{429, 429, 429}, "")

	_, err := testClient(srv.URL).Generate(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 3, *calls)
}

func TestClient_ConnectionFailureExhaustion(t *testing.T) {
	// A server that is already closed produces connection errors on
	// every attempt.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClient(url).Generate(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrRetriesExhausted)
}

func TestClient_NonTransientStatusAbortsImmediately(t *testing.T) {
	srv, calls := scriptedServer(t, []int{403}, "")

	_, err := testClient(srv.URL).Generate(context.Background(), &Request{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 403, statusErr.Code)
	assert.Equal(t, 1, *calls, "non-transient status must not be retried")
}

func TestClient_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "garbage"},
		{"no candidates", `{"candidates":[]}`},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := scriptedServer(t, []int{200}, tt.body)

			_, err := testClient(srv.URL).Generate(context.Background(), &Request{})
			assert.ErrorIs(t, err, ErrBadResponse)
			assert.Equal(t, 1, *calls, "format errors must not be retried")
		})
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	srv, _ := scriptedServer(t, []int{429, 429, 429}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).Generate(ctx, &Request{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRetriesExhausted))
}
