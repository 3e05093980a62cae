package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"brokerage/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.QuoteConfig{
		BaseURL:        serverURL,
		Token:          "test-token",
		TimeoutSeconds: 2,
	})
}

func TestClientLookupSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/AAPL", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		fmt.Fprint(w, `{"symbol":"AAPL","companyName":"Apple Inc","latestPrice":150.25}`)
	}))
	defer server.Close()

	q, err := newTestClient(server.URL).Lookup(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "Apple Inc", q.Name)
	assert.Equal(t, int64(15025), q.Price)
}

func TestClientLookupSymbolNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Lookup(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestClientLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Lookup(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientLookupBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Lookup(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnavailable)
}

// 价格为零或为负的行情不可用，不能进入交易路径
func TestClientLookupInvalidPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol":"AAPL","companyName":"Apple Inc","latestPrice":0}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Lookup(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnavailable)
}

// 代码原样拼进 URL 会改写请求路径，必须转义后再发
func TestClientLookupEscapesSymbol(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Lookup(context.Background(), "A/B")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
	assert.Equal(t, "/quote/A%2FB", gotPath)
}

func TestClientLookupConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 立即关掉，模拟行情服务挂了

	_, err := newTestClient(server.URL).Lookup(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnavailable)
}
