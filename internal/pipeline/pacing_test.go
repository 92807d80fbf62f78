package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
	"github.com/lehigh-university-libraries/placeimages/internal/search"
)

// pacedSearcher records the request delay it was configured with
type pacedSearcher struct {
	fakeSearcher
	delays []time.Duration
}

func (p *pacedSearcher) SetRequestDelay(d time.Duration) {
	p.delays = append(p.delays, d)
}

func TestProcessAllConfiguresRequestDelay(t *testing.T) {
	searcher := &pacedSearcher{}
	orch := New(searcher, nil, nil)

	cfg := models.DefaultPipelineConfig()
	cfg.InterRequestDelay = 250 * time.Millisecond
	cfg.UseFallbackOnEmpty = false
	orch.ProcessAll(context.Background(), cities(1), &cfg)

	cfg.InterRequestDelay = -time.Second
	orch.ProcessAll(context.Background(), cities(1), &cfg)

	orch.ProcessAll(context.Background(), cities(1), nil)

	want := []time.Duration{250 * time.Millisecond, 0, models.DefaultInterRequestDelay}
	if len(searcher.delays) != len(want) {
		t.Fatalf("Expected %d delay updates, got %v", len(want), searcher.delays)
	}
	for i, d := range want {
		if searcher.delays[i] != d {
			t.Errorf("Run %d: expected request delay %v, got %v", i, d, searcher.delays[i])
		}
	}
}

func TestProcessAllPacesProviderRequests(t *testing.T) {
	var (
		mu       sync.Mutex
		arrivals []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 0, "total_pages": 0, "results": []}`))
	}))
	t.Cleanup(srv.Close)

	client := search.NewClient(search.Config{BaseURL: srv.URL, AccessKey: "test-key"})
	orch := New(client, nil, nil)

	const delay = 40 * time.Millisecond
	cfg := models.DefaultPipelineConfig()
	cfg.InterRequestDelay = delay
	cfg.UseFallbackOnEmpty = false

	start := time.Now()
	outcomes := orch.ProcessAll(context.Background(), []models.LocationRequest{{Name: "Qwertown", Country: "Nowhereland"}}, &cfg)
	elapsed := time.Since(start)

	if len(outcomes) != 1 || !outcomes[0].Success || outcomes[0].ImageCount != 0 {
		t.Fatalf("Expected one successful empty outcome, got %+v", outcomes)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(arrivals) != len(search.QueryStrings("Qwertown", "Nowhereland")) {
		t.Fatalf("Expected every query template to be tried, got %d requests", len(arrivals))
	}
	for i := 1; i < len(arrivals); i++ {
		if gap := arrivals[i].Sub(arrivals[i-1]); gap < delay {
			t.Errorf("Request %d followed the previous one after %v, expected at least %v", i+1, gap, delay)
		}
	}
	if minimum := time.Duration(len(arrivals)-1) * delay; elapsed < minimum {
		t.Errorf("Expected run to take at least %v, took %v", minimum, elapsed)
	}
	if client.RequestDelay() != delay {
		t.Errorf("Expected client request delay %v, got %v", delay, client.RequestDelay())
	}
}
