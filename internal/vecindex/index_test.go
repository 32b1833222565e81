// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vecindex

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pdiddy/litreview/pkg/types"
)

// stubEmbedder returns canned vectors by text, counting calls.
type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string, _ InputType) ([]float32, error) {
	s.calls++
	vec, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return vec, nil
}

func testIndex() (*Index, *stubEmbedder) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"abstract a": {1, 0},
		"abstract b": {0, 1},
		"abstract c": {1, 1},
		"query near a": {0.9, 0},
		"query mid":    {0.5, 0.5},
	}}
	return New(emb), emb
}

func paperWith(id, summary string) types.Paper {
	return types.Paper{ID: id, URL: "http://arxiv.org/abs/" + id, Title: "t-" + id, Summary: summary}
}

func TestQueryEmptyIndex(t *testing.T) {
	ix, _ := testIndex()
	_, err := ix.Query(context.Background(), "query near a", 5)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("error = %v, want ErrEmptyIndex", err)
	}
}

func TestInsertAndQueryOrdering(t *testing.T) {
	ix, _ := testIndex()
	ctx := context.Background()

	for _, p := range []types.Paper{
		paperWith("A", "abstract a"),
		paperWith("B", "abstract b"),
		paperWith("C", "abstract c"),
	} {
		if err := ix.Insert(ctx, p); err != nil {
			t.Fatalf("Insert(%s) error = %v", p.ID, err)
		}
	}

	matches, err := ix.Query(ctx, "query near a", 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
	if matches[0].ID != "A" {
		t.Errorf("nearest = %s, want A", matches[0].ID)
	}
	if matches[0].Distance >= matches[1].Distance {
		t.Errorf("distances not ascending: %f then %f", matches[0].Distance, matches[1].Distance)
	}
}

func TestQueryTieBreaksByInsertionOrder(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		// B and A are equidistant from the query; A was inserted first.
		"same spot": {1, 0},
		"q":         {0, 0},
	}}
	ix := New(emb)
	ctx := context.Background()

	if err := ix.Insert(ctx, paperWith("A", "same spot")); err != nil {
		t.Fatal(err)
	}
	if err := ix.Insert(ctx, paperWith("B", "same spot")); err != nil {
		t.Fatal(err)
	}

	matches, err := ix.Query(ctx, "q", 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if matches[0].ID != "A" || matches[1].ID != "B" {
		t.Errorf("tie order = [%s %s], want [A B]", matches[0].ID, matches[1].ID)
	}
}

func TestInsertIdempotent(t *testing.T) {
	ix, _ := testIndex()
	ctx := context.Background()

	p := paperWith("A", "abstract a")
	for i := 0; i < 3; i++ {
		if err := ix.Insert(ctx, p); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after repeated inserts", ix.Len())
	}

	if err := ix.Insert(ctx, paperWith("B", "abstract b")); err != nil {
		t.Fatal(err)
	}

	matches, err := ix.Query(ctx, "query near a", 5)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 2 || matches[0].ID != "A" {
		t.Errorf("matches = %v, want [A B]", matches)
	}
}

func TestReinsertReplacesVectorKeepsRank(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"old":  {10, 10},
		"new":  {0, 0.1},
		"near": {0, 0.1},
		"q":    {0, 0},
	}}
	ix := New(emb)
	ctx := context.Background()

	if err := ix.Insert(ctx, paperWith("A", "old")); err != nil {
		t.Fatal(err)
	}
	if err := ix.Insert(ctx, paperWith("B", "near")); err != nil {
		t.Fatal(err)
	}
	// Re-keying A onto the same spot as B: A keeps its earlier insertion
	// rank, so it wins the tie.
	if err := ix.Insert(ctx, paperWith("A", "new")); err != nil {
		t.Fatal(err)
	}

	matches, err := ix.Query(ctx, "q", 2)
	if err != nil {
		t.Fatal(err)
	}
	if matches[0].ID != "A" {
		t.Errorf("first match = %s, want A (earlier insertion wins tie)", matches[0].ID)
	}
}

func TestDelete(t *testing.T) {
	ix, _ := testIndex()
	ctx := context.Background()

	if err := ix.Insert(ctx, paperWith("A", "abstract a")); err != nil {
		t.Fatal(err)
	}
	ix.Delete("A")
	if ix.Contains("A") {
		t.Error("Contains(A) = true after Delete")
	}
	if _, err := ix.Query(ctx, "query near a", 1); !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("error = %v, want ErrEmptyIndex after deleting only entry", err)
	}
}

func TestInsertEmptyID(t *testing.T) {
	ix, _ := testIndex()
	if err := ix.Insert(context.Background(), types.Paper{Summary: "abstract a"}); err == nil {
		t.Error("Insert with empty ID should fail")
	}
}

func TestL2Distance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 0},
		{"unit apart", []float32{0, 0}, []float32{1, 0}, 1},
		{"squared", []float32{0, 0}, []float32{3, 4}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l2Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("l2Distance = %f, want %f", got, tt.want)
			}
		})
	}
}
