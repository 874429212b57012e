package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightpoll/internal/cache"
)

func exploreServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		switch r.URL.Path {
		case "/api/explore/":
			assert.Equal(t, "IN", r.URL.Query().Get("country"))
			json.NewEncoder(w).Encode(map[string]any{
				"destinations": []Destination{
					{Code: "GOI", Name: "Goa", Country: "IN", MinPrice: 3200, Currency: "INR"},
				},
			})
		case "/api/autocomplete":
			json.NewEncoder(w).Encode(map[string]any{
				"places": []Place{
					{Code: "DEL", Name: "Indira Gandhi International", Type: "airport", Country: "IN"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestExploreUsesCache(t *testing.T) {
	hits := 0
	srv := exploreServer(t, &hits)
	defer srv.Close()

	client := New(srv.URL, cache.NewMemoryCache())
	ctx := context.Background()

	first, err := client.Explore(ctx, "IN", "en", "INR")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "GOI", first[0].Code)
	assert.Equal(t, 1, hits)

	second, err := client.Explore(ctx, "IN", "en", "INR")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits, "second call must be served from cache")
}

func TestInvalidateDestinations(t *testing.T) {
	hits := 0
	srv := exploreServer(t, &hits)
	defer srv.Close()

	client := New(srv.URL, cache.NewMemoryCache())
	ctx := context.Background()

	_, err := client.Explore(ctx, "IN", "en", "INR")
	require.NoError(t, err)

	require.NoError(t, client.InvalidateDestinations(ctx, "IN", "en", "INR"))

	_, err = client.Explore(ctx, "IN", "en", "INR")
	require.NoError(t, err)
	assert.Equal(t, 2, hits, "invalidation must force a refetch")
}

func TestAutocomplete(t *testing.T) {
	hits := 0
	srv := exploreServer(t, &hits)
	defer srv.Close()

	client := New(srv.URL, nil)
	matches, err := client.Autocomplete(context.Background(), "del", "IN", "en")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "DEL", matches[0].Code)
}
