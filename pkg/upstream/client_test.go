package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Payphone-Digital/storefront/pkg/circuit"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Breaker:    circuit.Config{Threshold: 50, Timeout: time.Minute, SuccessThreshold: 1, MaxHalfOpen: 1},
	}
	for _, m := range mutate {
		m(&cfg)
	}

	client, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "not a url"}, nil)
	assert.Error(t, err)
}

func TestNewClient_UsesSharedHTTPClient(t *testing.T) {
	shared := &http.Client{}
	client, err := NewClient(Config{BaseURL: "http://localhost:4000", Timeout: 3 * time.Second, HTTPClient: shared}, nil)
	require.NoError(t, err)

	assert.Same(t, shared, client.httpClient)
	assert.Equal(t, 3*time.Second, shared.Timeout)
}

func TestGet_DecodesEnvelopeAndForwardsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "red shoe", r.URL.Query().Get("name"))
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Lấy các sản phẩm thành công",
			"data":    map[string]any{"pagination": map[string]int{"page": 2, "limit": 20, "page_size": 7}},
		})
	})

	var out struct {
		Pagination struct {
			PageSize int `json:"page_size"`
		} `json:"pagination"`
	}
	msg, err := client.Get(context.Background(), "/products", url.Values{"page": {"2"}, "name": {"red shoe"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Lấy các sản phẩm thành công", msg)
	assert.Equal(t, 7, out.Pagination.PageSize)
}

func TestDo_InjectsAccessTokenAndJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "req-7", r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"product_id":"p1","buy_count":2}`, string(raw))
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "data": nil})
	})

	ctx := ctxutil.WithAccessToken(context.Background(), "Bearer abc")
	ctx = ctxutil.WithValue(ctx, ctxutil.RequestIDKey, "req-7")

	msg, err := client.Post(ctx, "/purchases/add-to-cart", map[string]any{"product_id": "p1", "buy_count": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", msg)
}

func TestDo_NoTokenWithoutSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	})

	_, err := client.Get(context.Background(), "/categories", nil, nil)
	require.NoError(t, err)
}

func TestDo_ValidationError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "Lỗi",
			"data":    map[string]string{"email": "Email đã tồn tại"},
		})
	})

	_, err := client.Post(context.Background(), "/register", map[string]string{"email": "a@b.co"}, nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t, "Lỗi", apiErr.Message)
	assert.Equal(t, map[string]string{"email": "Email đã tồn tại"}, apiErr.FieldErrors())
	assert.EqualValues(t, 1, calls.Load(), "4xx must not be retried")
}

func TestDo_WithoutRetrySendsOnce(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, map[string]string{"message": "bad gateway"})
	})

	body := map[string]string{"password": "secret1", "new_password": "secret2"}

	_, err := client.Put(WithoutRetry(context.Background()), "/user", body, nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())

	calls.Store(0)
	_, err = client.Put(context.Background(), "/user", body, nil)
	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load(), "a plain PUT is retried")
}

func TestDo_StatusTextWhenNoMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Get(context.Background(), "/products/missing", nil, nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Nil(t, apiErr.FieldErrors())
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusBadGateway, map[string]string{"message": "busy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "data": []string{"a"}})
	})

	var out []string
	_, err := client.Get(context.Background(), "/categories", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out)
	assert.EqualValues(t, 3, calls.Load())
}

func TestDo_DoesNotRetryPost(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	})

	_, err := client.Post(context.Background(), "/purchases/buy-products", []any{}, nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDo_BreakerOpensPerEndpointGroup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/categories" {
			writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "down"})
	}, func(cfg *Config) {
		cfg.MaxRetries = 0
		cfg.Breaker = circuit.Config{Threshold: 2, Timeout: time.Hour, SuccessThreshold: 1, MaxHalfOpen: 1}
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, "/products", nil, nil)
		require.Error(t, err)
	}

	_, err := client.Get(ctx, "/products", nil, nil)
	assert.True(t, errors.Is(err, ErrCircuitOpen), "got %v", err)
	circuits := client.Circuits()
	require.Len(t, circuits, 1)
	assert.Equal(t, "products", circuits[0].Name)
	assert.Equal(t, circuit.StateOpen, circuits[0].State)

	_, err = client.Get(ctx, "/categories", nil, nil)
	assert.NoError(t, err, "other endpoint groups keep working")
}

func TestDo_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "/products", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	for _, c := range client.Circuits() {
		assert.Equal(t, circuit.StateClosed, c.State)
	}
}

func TestEndpointGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/products", "products"},
		{"/products/60afb2c76ef5b902180aacba", "products"},
		{"purchases/add-to-cart", "purchases"},
		{"/", "root"},
	}
	for _, tt := range tests {
		if got := endpointGroup(tt.path); got != tt.want {
			t.Errorf("endpointGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
