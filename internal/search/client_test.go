package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

const testBaseURL = "https://api.example.test"

// newMockedClient returns a client whose transport is intercepted by httpmock and
// whose pacing delay is recorded instead of slept.
func newMockedClient(t *testing.T) (*Client, *[]time.Duration) {
	t.Helper()

	c := NewClient(Config{BaseURL: testBaseURL, AccessKey: "test-key"})
	httpmock.ActivateNonDefault(c.HTTPClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	var sleeps []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return c, &sleeps
}

func photosJSON(ids ...string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf(`{
			"id": %q,
			"urls": {"regular": "https://img.example.test/%s.jpg", "thumb": "https://img.example.test/%s_t.jpg"},
			"alt_description": "photo %s",
			"user": {"name": "Ana Silva", "username": "anasilva"},
			"tags": [{"title": "city"}],
			"likes": 12,
			"created_at": "2024-05-01T10:00:00Z"
		}`, id, id, id, id))
	}
	return `{"total": 100, "total_pages": 20, "results": [` + strings.Join(parts, ",") + `]}`
}

// registerByQuery serves a canned body per query string; unknown queries return no results
func registerByQuery(bodies map[string]string, statuses map[string]int) *int32 {
	var calls int32
	httpmock.RegisterResponder("GET", testBaseURL+"/search/photos",
		func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			q := req.URL.Query().Get("query")
			if status, ok := statuses[q]; ok {
				return httpmock.NewStringResponse(status, `{"errors":["nope"]}`), nil
			}
			if body, ok := bodies[q]; ok {
				return httpmock.NewStringResponse(http.StatusOK, body), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"results": []}`), nil
		})
	return &calls
}

func imageIDs(images []models.ExternalImage) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids
}

func TestQueryStrings(t *testing.T) {
	queries := QueryStrings("Lisbon", "Portugal")

	require.Len(t, queries, 8)
	assert.Equal(t, "Lisbon Portugal", queries[0])
	assert.Equal(t, "Lisbon Portugal skyline", queries[1])
	assert.Equal(t, "Lisbon Portugal tourism", queries[7])
}

func TestGetLocationImages_DeduplicatesAcrossQueries(t *testing.T) {
	c, _ := newMockedClient(t)
	registerByQuery(map[string]string{
		"Lisbon Portugal":         photosJSON("X123", "A1"),
		"Lisbon Portugal skyline": photosJSON("X123", "B2"),
	}, nil)

	images, err := c.GetLocationImages(context.Background(), "Lisbon", "Portugal", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"X123", "A1", "B2"}, imageIDs(images))
}

func TestGetLocationImages_NeverExceedsMax(t *testing.T) {
	c, _ := newMockedClient(t)
	calls := registerByQuery(map[string]string{
		"Porto Portugal": photosJSON("1", "2", "3", "4", "5"),
	}, nil)

	images, err := c.GetLocationImages(context.Background(), "Porto", "Portugal", 4)

	require.NoError(t, err)
	assert.Len(t, images, 4)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "should stop once the target is met")
}

func TestGetLocationImages_RequestParameters(t *testing.T) {
	c, _ := newMockedClient(t)

	var got *http.Request
	httpmock.RegisterResponder("GET", testBaseURL+"/search/photos",
		func(req *http.Request) (*http.Response, error) {
			if got == nil {
				got = req
			}
			return httpmock.NewStringResponse(http.StatusOK, photosJSON("a", "b")), nil
		})

	_, err := c.GetLocationImages(context.Background(), "Oslo", "Norway", 2)
	require.NoError(t, err)
	require.NotNil(t, got)

	q := got.URL.Query()
	assert.Equal(t, "Oslo Norway", q.Get("query"))
	assert.Equal(t, "2", q.Get("per_page"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "landscape", q.Get("orientation"))
	assert.Equal(t, "relevant", q.Get("order_by"))
	assert.Equal(t, "Client-ID test-key", got.Header.Get("Authorization"))
}

func TestGetLocationImages_PerPageNeverAboveFive(t *testing.T) {
	c, _ := newMockedClient(t)

	var perPage []string
	httpmock.RegisterResponder("GET", testBaseURL+"/search/photos",
		func(req *http.Request) (*http.Response, error) {
			perPage = append(perPage, req.URL.Query().Get("per_page"))
			return httpmock.NewStringResponse(http.StatusOK, photosJSON(fmt.Sprintf("id-%d", len(perPage)))), nil
		})

	images, err := c.GetLocationImages(context.Background(), "Rome", "Italy", 12)

	require.NoError(t, err)
	assert.Len(t, images, 8, "one unique image per template")
	require.Len(t, perPage, 8)
	for _, p := range perPage {
		assert.Equal(t, "5", p)
	}
}

func TestGetLocationImages_QueryErrorsDegradeToEmpty(t *testing.T) {
	c, _ := newMockedClient(t)
	calls := registerByQuery(map[string]string{
		"Paris France skyline":   `{"results": [`,
		"Paris France landmarks": photosJSON("p1", "p2"),
	}, map[string]int{
		"Paris France": http.StatusInternalServerError,
	})

	images, err := c.GetLocationImages(context.Background(), "Paris", "France", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, imageIDs(images))
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestGetLocationImages_NoResultsAnywhere(t *testing.T) {
	c, sleeps := newMockedClient(t)
	calls := registerByQuery(nil, map[string]int{"Qwertown Nowhereland": http.StatusUnauthorized})

	images, err := c.GetLocationImages(context.Background(), "Qwertown", "Nowhereland", 4)

	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Equal(t, int32(8), atomic.LoadInt32(calls), "every template is tried")
	assert.Len(t, *sleeps, 7, "pacing delay between requests, not before the first")
	for _, d := range *sleeps {
		assert.Equal(t, DefaultRequestDelay, d)
	}
}

func TestNewClientDefaultRequestDelay(t *testing.T) {
	c := NewClient(Config{AccessKey: "k"})
	assert.Equal(t, DefaultRequestDelay, c.RequestDelay(), "requests are paced without explicit configuration")

	c.SetRequestDelay(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, c.RequestDelay())

	c.SetRequestDelay(0)
	assert.Equal(t, time.Duration(0), c.RequestDelay())

	c.SetRequestDelay(-time.Second)
	assert.Equal(t, time.Duration(0), c.RequestDelay(), "negative delay is clamped")
}

func TestGetLocationImages_UsesConfiguredRequestDelay(t *testing.T) {
	c, sleeps := newMockedClient(t)
	c.SetRequestDelay(350 * time.Millisecond)
	registerByQuery(nil, nil)

	_, err := c.GetLocationImages(context.Background(), "Faro", "Portugal", 4)

	require.NoError(t, err)
	require.Len(t, *sleeps, 7)
	for _, d := range *sleeps {
		assert.Equal(t, 350*time.Millisecond, d)
	}
}

func TestGetLocationImages_MissingCredential(t *testing.T) {
	c := NewClient(Config{BaseURL: testBaseURL})
	httpmock.ActivateNonDefault(c.HTTPClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	images, err := c.GetLocationImages(context.Background(), "Lisbon", "Portugal", 4)

	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestGetLocationImages_ZeroMax(t *testing.T) {
	c, _ := newMockedClient(t)

	images, err := c.GetLocationImages(context.Background(), "Lisbon", "Portugal", 0)

	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestGetLocationImages_CancelledContext(t *testing.T) {
	c, _ := newMockedClient(t)
	registerByQuery(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	images, err := c.GetLocationImages(ctx, "Lisbon", "Portugal", 4)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, images)
}

func TestGetLocationImages_RequestTimeoutIsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
		_, _ = w.Write([]byte(photosJSON("late")))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, AccessKey: "k", RequestTimeout: 20 * time.Millisecond})
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }

	cursor := c.Queries("Lisbon", "Portugal")
	result, ok := cursor.Next(context.Background(), 4)

	require.True(t, ok)
	require.Error(t, result.Err)
	assert.Empty(t, result.Images)

	var reqErr *ProviderRequestError
	require.ErrorAs(t, result.Err, &reqErr)
	assert.Equal(t, "Lisbon Portugal", reqErr.Query)
}

func TestCursorIsFinite(t *testing.T) {
	c, _ := newMockedClient(t)
	registerByQuery(nil, nil)

	cursor := c.Queries("Lisbon", "Portugal")
	count := 0
	for {
		_, ok := cursor.Next(context.Background(), 5)
		if !ok {
			break
		}
		count++
	}

	assert.Equal(t, 8, count)
	assert.Equal(t, 8, cursor.Issued())

	_, ok := cursor.Next(context.Background(), 5)
	assert.False(t, ok, "exhausted cursor stays exhausted")
}

func TestProviderRequestErrorMessage(t *testing.T) {
	err := &ProviderRequestError{Query: "Lisbon Portugal", StatusCode: 403, Err: fmt.Errorf("forbidden")}
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "Lisbon Portugal")
}
