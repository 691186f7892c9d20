package rerank

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/ports"
)

func TestNewRequiresURL(t *testing.T) {
	if _, err := New("", "model", time.Second); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := New("  ", "model", time.Second); err == nil {
		t.Fatalf("expected error for blank url")
	}
}

func TestScorePairsRestoresInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Model     string   `json:"model"`
			Query     string   `json:"query"`
			Documents []string `json:"documents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "ce-model" || req.Query != "q" || len(req.Documents) != 3 {
			t.Fatalf("unexpected request: %+v", req)
		}
		// ranked response, highest first
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "relevance_score": 0.9},
				{"index": 0, "relevance_score": 0.5},
				{"index": 1, "relevance_score": 0.1},
			},
		})
	}))
	defer server.Close()

	client, err := New(server.URL, "ce-model", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scores, err := client.ScorePairs(context.Background(), "q", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.5, 0.1, 0.9}
	for i := range want {
		if scores[i] != want[i] {
			t.Fatalf("score %d: expected %v, got %v", i, want[i], scores[i])
		}
	}
}

func TestScorePairsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"index": 0, "relevance_score": 0.9}},
		})
	}))
	defer server.Close()

	client, _ := New(server.URL, "ce-model", time.Second)
	if _, err := client.ScorePairs(context.Background(), "q", []string{"a", "b"}); err == nil {
		t.Fatalf("expected error for result count mismatch")
	}
}

func TestScorePairsIndexOutOfRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"index": 5, "relevance_score": 0.9}},
		})
	}))
	defer server.Close()

	client, _ := New(server.URL, "ce-model", time.Second)
	if _, err := client.ScorePairs(context.Background(), "q", []string{"a"}); err == nil {
		t.Fatalf("expected error for out-of-range index")
	}
}

func TestScorePairsEmptyInput(t *testing.T) {
	client, _ := New("http://localhost:9", "ce-model", time.Second)
	scores, err := client.ScorePairs(context.Background(), "q", nil)
	if err != nil || scores != nil {
		t.Fatalf("expected nil result without network call, got (%v, %v)", scores, err)
	}
}

func TestProbe(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(int(status.Load()))
	}))
	defer server.Close()

	client, _ := New(server.URL, "ce-model", time.Second)
	if err := client.Probe(context.Background()); err != nil {
		t.Fatalf("expected healthy probe, got %v", err)
	}

	status.Store(http.StatusServiceUnavailable)
	if err := client.Probe(context.Background()); err == nil {
		t.Fatalf("expected probe failure for 503")
	}
}

type countingScorer struct{}

func (countingScorer) ScorePairs(context.Context, string, []string) ([]float64, error) {
	return nil, nil
}

func TestLazyConstructsOnce(t *testing.T) {
	constructions := 0
	lazy := NewLazy(func(context.Context) (ports.CrossEncoderScorer, error) {
		constructions++
		return countingScorer{}, nil
	})

	first, err := lazy.Scorer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := lazy.Scorer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if constructions != 1 {
		t.Fatalf("expected a single construction, got %d", constructions)
	}
	if first != second {
		t.Fatalf("expected the cached instance on subsequent calls")
	}
}

func TestLazyRetriesAfterFailedConstruction(t *testing.T) {
	constructions := 0
	lazy := NewLazy(func(context.Context) (ports.CrossEncoderScorer, error) {
		constructions++
		if constructions == 1 {
			return nil, errors.New("backend down")
		}
		return countingScorer{}, nil
	})

	if _, err := lazy.Scorer(context.Background()); err == nil {
		t.Fatalf("expected first construction to fail")
	}
	scorer, err := lazy.Scorer(context.Background())
	if err != nil || scorer == nil {
		t.Fatalf("expected retry to succeed, got (%v, %v)", scorer, err)
	}
	if constructions != 2 {
		t.Fatalf("expected 2 construction attempts, got %d", constructions)
	}
}
