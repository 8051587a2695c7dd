package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var waits []time.Duration
	c := &Client{
		Endpoint:    srv.URL,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}
	return c, &waits
}

func okBody(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":"` + text + `"}]}}]}`
}

func TestGenerate_Success(t *testing.T) {
	calls := 0
	c, waits := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(okBody("hola")))
	})

	text, err := c.Generate(context.Background(), &GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "hola", text)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)
}

func TestGenerate_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	c, waits := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(okBody("listo")))
	})

	text, err := c.Generate(context.Background(), &GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "listo", text)
	assert.Equal(t, 3, calls)
	require.Len(t, *waits, 2)
}

func TestGenerate_ExhaustsBudgetOnTransientFailures(t *testing.T) {
	calls := 0
	c, waits := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Generate(context.Background(), &GenerateRequest{})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	// Delays grow exponentially: base*1 and base*2, each plus jitter < 250ms.
	require.Len(t, *waits, 2)
	assert.GreaterOrEqual(t, (*waits)[0], 1*time.Second)
	assert.Less(t, (*waits)[0], 1*time.Second+250*time.Millisecond)
	assert.GreaterOrEqual(t, (*waits)[1], 2*time.Second)
	assert.Less(t, (*waits)[1], 2*time.Second+250*time.Millisecond)
}

func TestGenerate_PermanentFailureStopsImmediately(t *testing.T) {
	calls := 0
	c, waits := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"forbidden"}`))
	})

	_, err := c.Generate(context.Background(), &GenerateRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "forbidden")
}

func TestGenerate_EmptyResponseYieldsFallback(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	text, err := c.Generate(context.Background(), &GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "No se pudo obtener respuesta de la IA.", text)
}

func TestGenerate_MalformedResponseYieldsFallback(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	})

	text, err := c.Generate(context.Background(), &GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, FallbackText, text)
}

func TestGenerate_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		Endpoint:    srv.URL,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	_, err := c.Generate(ctx, &GenerateRequest{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no candidates", `{"candidates":[]}`, FallbackText},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`, FallbackText},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`, FallbackText},
		{"usable text", okBody("todo bien"), "todo bien"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp GenerateResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			assert.Equal(t, tt.want, resp.Text())
		})
	}
}
