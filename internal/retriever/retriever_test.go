package retriever

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/induxo/chatcore/internal/db"
	"github.com/induxo/chatcore/internal/models"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

type fakeSearcher struct {
	results    []models.ScoredContent
	err        error
	lastFilter db.Filter
}

func (f *fakeSearcher) SearchContent(ctx context.Context, embedding []float32, k int, filter db.Filter) ([]models.ScoredContent, error) {
	f.lastFilter = filter
	return f.results, f.err
}

func scored(id, title, text string, score float64) models.ScoredContent {
	return models.ScoredContent{
		ContentItem: models.ContentItem{ID: id, Title: title, Text: text},
		Score:       score,
	}
}

func TestRetrieveReturnsOrderedSnippets(t *testing.T) {
	store := &fakeSearcher{results: []models.ScoredContent{
		scored("a", "Predictive Maintenance", "sensor data analysis", 0.92),
		scored("b", "Welding FAQ", "arc welding basics", 0.81),
	}}
	r := New(&fakeEmbedder{vec: []float32{1, 0}}, store, nil)

	snippets := r.Retrieve(context.Background(), "how does predictive maintenance work?")
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2", len(snippets))
	}
	if snippets[0].Title != "Predictive Maintenance" {
		t.Errorf("top snippet = %q, want most relevant first", snippets[0].Title)
	}
}

func TestRetrieveDegradesOnEmbedFailure(t *testing.T) {
	store := &fakeSearcher{results: []models.ScoredContent{scored("a", "t", "x", 1)}}
	r := New(&fakeEmbedder{err: errors.New("provider down")}, store, nil)

	snippets := r.Retrieve(context.Background(), "anything")
	if len(snippets) != 0 {
		t.Errorf("got %d snippets after embed failure, want 0", len(snippets))
	}
}

func TestRetrieveDegradesOnStoreFailure(t *testing.T) {
	store := &fakeSearcher{err: db.ErrStoreUnavailable}
	r := New(&fakeEmbedder{vec: []float32{1}}, store, nil)

	snippets := r.Retrieve(context.Background(), "anything")
	if len(snippets) != 0 {
		t.Errorf("got %d snippets after store failure, want 0", len(snippets))
	}
}

func TestRetrieveBoundsContextSize(t *testing.T) {
	long := strings.Repeat("industrial automation ", 400) // ~8800 chars
	store := &fakeSearcher{results: []models.ScoredContent{
		scored("a", "Long", long, 0.9),
		scored("b", "Next", "short text", 0.8),
	}}
	r := New(&fakeEmbedder{vec: []float32{1}}, store, nil)

	snippets := r.Retrieve(context.Background(), "automation")
	total := 0
	for _, s := range snippets {
		total += len(s.Text)
	}
	if total > maxContextChars {
		t.Errorf("total context = %d chars, want <= %d", total, maxContextChars)
	}
	if len(snippets) != 1 {
		t.Errorf("got %d snippets, want 1 (budget consumed by first)", len(snippets))
	}
	for _, s := range snippets {
		if s.Title == "Next" {
			t.Errorf("fragment of next item %q admitted after budget was spent", s.Text)
		}
	}
}

func TestRetrieveTruncatesLastSnippetAtWordBoundary(t *testing.T) {
	first := strings.Repeat("predictive maintenance ", 200) // ~4600 chars, fits whole
	second := strings.Repeat("welding procedure ", 300)     // exceeds what remains
	store := &fakeSearcher{results: []models.ScoredContent{
		scored("a", "First", first, 0.9),
		scored("b", "Second", second, 0.8),
		scored("c", "Third", "never reached", 0.7),
	}}
	r := New(&fakeEmbedder{vec: []float32{1}}, store, nil)

	snippets := r.Retrieve(context.Background(), "maintenance")
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2 (third excluded once budget spent)", len(snippets))
	}

	total := 0
	for _, s := range snippets {
		total += len(s.Text)
	}
	if total > maxContextChars {
		t.Errorf("total context = %d chars, want <= %d", total, maxContextChars)
	}
	if cut := snippets[1].Text; !strings.HasSuffix(cut, "welding") && !strings.HasSuffix(cut, "procedure") {
		t.Errorf("truncated snippet does not end on a word boundary: %q", cut[len(cut)-20:])
	}
}

func TestInferFilter(t *testing.T) {
	tests := []struct {
		query string
		want  models.ContentType
	}{
		{"show me the blog post about robots", models.ContentBlog},
		{"is there an faq on delivery times?", models.ContentFAQ},
		{"what services do you offer?", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := inferFilter(tt.query)
			if got.Type != tt.want {
				t.Errorf("inferFilter(%q).Type = %q, want %q", tt.query, got.Type, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	if Render(nil) != "" {
		t.Error("Render(nil) should be empty")
	}

	out := Render([]Snippet{
		{Title: "A", Text: "alpha"},
		{Title: "B", Text: "beta"},
	})
	if !strings.Contains(out, "## A") || !strings.Contains(out, "beta") {
		t.Errorf("Render output missing sections: %q", out)
	}
	if !strings.Contains(out, "---") {
		t.Errorf("Render output missing separator: %q", out)
	}
}
