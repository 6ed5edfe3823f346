package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticEmbedder_IsDeterministic(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()

	v1, err := e.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	v2, err := e.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, StaticDimensions)
}

func TestStaticEmbedder_EmptyTextYieldsZeroVector(t *testing.T) {
	e := NewStaticEmbedder()
	v, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	for _, f := range v {
		assert.Zero(t, f)
	}
}

func TestStaticEmbedder_DifferentTextYieldsDifferentVector(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()
	v1, _ := e.Embed(ctx, "alpha bravo charlie")
	v2, _ := e.Embed(ctx, "totally unrelated words here")
	assert.NotEqual(t, v1, v2)
}

func TestStaticEmbedder_CloseRejectsFurtherEmbeds(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Close())
	_, err := e.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.False(t, e.Available(context.Background()))
}

func TestCachedEmbedder_CachesRepeatedCalls(t *testing.T) {
	inner := &countingEmbedder{dims: 4}
	cached := NewCachedEmbedder(inner, 10)

	ctx := context.Background()
	_, err := cached.Embed(ctx, "same text")
	require.NoError(t, err)
	_, err = cached.Embed(ctx, "same text")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

func TestHTTPEmbedder_EmbedsViaConfiguredEndpoint(t *testing.T) {
	dims := 3
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(httpResponseBody{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	e, err := NewHTTPEmbedder(HTTPConfig{Endpoint: srv.URL, Model: "test", Dimensions: dims})
	require.NoError(t, err)

	v, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, v)
}

func TestHTTPEmbedder_DimensionMismatchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(httpResponseBody{Embedding: []float32{0.1}})
	}))
	defer srv.Close()

	e, err := NewHTTPEmbedder(HTTPConfig{Endpoint: srv.URL, Dimensions: 5})
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "hello")
	require.Error(t, err)
}

func TestNewHTTPEmbedder_RejectsMissingEndpoint(t *testing.T) {
	_, err := NewHTTPEmbedder(HTTPConfig{Dimensions: 4})
	require.Error(t, err)
}

type countingEmbedder struct {
	dims  int
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	v := make([]float32, c.dims)
	v[0] = float32(len(text))
	return v, nil
}
func (c *countingEmbedder) Dimensions() int                    { return c.dims }
func (c *countingEmbedder) ModelName() string                  { return "counting" }
func (c *countingEmbedder) Available(_ context.Context) bool   { return true }
func (c *countingEmbedder) Close() error                       { return nil }
