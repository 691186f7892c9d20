package domain

import "testing"

func TestParseRerankMethod(t *testing.T) {
	cases := []struct {
		raw    string
		want   RerankMethod
		wantOK bool
	}{
		{"none", RerankNone, true},
		{"embedding", RerankEmbedding, true},
		{"cross_encoder", RerankCrossEncoder, true},
		{"cross-encoder", RerankCrossEncoder, true},
		{"  Cross_Encoder  ", RerankCrossEncoder, true},
		{"", "", false},
		{"bm25", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRerankMethod(tc.raw)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("ParseRerankMethod(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestFormattedSourceResolutionOrder(t *testing.T) {
	cases := []struct {
		name     string
		metadata map[string]any
		want     string
	}{
		{
			name:     "source wins over file_path",
			metadata: map[string]any{"source": "Travel Manual", "file_path": "/docs/travel.pdf"},
			want:     "Travel Manual",
		},
		{
			name:     "file_path when source absent",
			metadata: map[string]any{"file_path": "/docs/travel.pdf", "title": "Travel"},
			want:     "/docs/travel.pdf",
		},
		{
			name:     "filename before title",
			metadata: map[string]any{"filename": "policy.pdf", "title": "Vacation Policy"},
			want:     "policy.pdf",
		},
		{
			name:     "title as last resort key",
			metadata: map[string]any{"title": "Vacation Policy"},
			want:     "Vacation Policy",
		},
		{
			name:     "default label without metadata",
			metadata: nil,
			want:     "Internal Document",
		},
		{
			name:     "page suffix from float metadata",
			metadata: map[string]any{"source": "HR Handbook", "page": float64(11)},
			want:     "HR Handbook (page 11)",
		},
		{
			name:     "page_number suffix",
			metadata: map[string]any{"source": "HR Handbook", "page_number": "4"},
			want:     "HR Handbook (page 4)",
		},
		{
			name:     "zero page ignored",
			metadata: map[string]any{"source": "HR Handbook", "page": float64(0)},
			want:     "HR Handbook",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Passage{Text: "x", Metadata: tc.metadata}.FormattedSource()
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDedupKeyTrimsWhitespace(t *testing.T) {
	a := Passage{Text: "  vacation policy  "}
	b := Passage{Text: "vacation policy"}
	if a.DedupKey() != b.DedupKey() {
		t.Fatalf("expected identical dedup keys, got %q vs %q", a.DedupKey(), b.DedupKey())
	}
	if (Passage{Text: "   "}).DedupKey() != "" {
		t.Fatalf("expected empty dedup key for whitespace-only text")
	}
}

func TestNormalizeResolvesDefaults(t *testing.T) {
	defaults := RetrievalDefaults{K: 7, Namespace: "docs", RerankMethod: RerankEmbedding}

	got := RetrievalRequest{Query: "q"}.Normalize(defaults)
	if got.K != 7 {
		t.Fatalf("expected default k 7, got %d", got.K)
	}
	if got.Namespace != "docs" {
		t.Fatalf("expected default namespace docs, got %q", got.Namespace)
	}
	if got.RerankMethod != RerankEmbedding {
		t.Fatalf("expected default method embedding, got %q", got.RerankMethod)
	}
	if got.RerankTopK != 7 {
		t.Fatalf("expected rerank top k to follow k, got %d", got.RerankTopK)
	}
}

func TestNormalizeHardFallbacks(t *testing.T) {
	got := RetrievalRequest{Query: "q"}.Normalize(RetrievalDefaults{})
	if got.K != 5 {
		t.Fatalf("expected hard fallback k 5, got %d", got.K)
	}
	if got.Namespace != "default" {
		t.Fatalf("expected hard fallback namespace, got %q", got.Namespace)
	}
	if got.RerankMethod != RerankNone {
		t.Fatalf("expected hard fallback method none, got %q", got.RerankMethod)
	}
	if got.RerankTopK != 5 {
		t.Fatalf("expected rerank top k 5, got %d", got.RerankTopK)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	req := RetrievalRequest{
		Query:        "q",
		Namespace:    "hr",
		K:            2,
		RerankMethod: RerankCrossEncoder,
		RerankTopK:   1,
	}
	got := req.Normalize(RetrievalDefaults{K: 9, Namespace: "docs", RerankMethod: RerankNone, RerankTopK: 4})
	if got != req {
		t.Fatalf("expected explicit request untouched, got %+v", got)
	}
}
