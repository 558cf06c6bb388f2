// Package retriever turns a user query into grounding context snippets via
// embedding + vector similarity search.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/induxo/chatcore/internal/db"
	"github.com/induxo/chatcore/internal/models"
)

const (
	// topK is the number of content items fetched per query.
	topK = 5

	// maxContextChars bounds the assembled context so it fits the
	// completion API's input limit alongside history and persona.
	maxContextChars = 6000
)

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ContentSearcher answers top-k similarity queries over indexed content.
type ContentSearcher interface {
	SearchContent(ctx context.Context, embedding []float32, k int, filter db.Filter) ([]models.ScoredContent, error)
}

// Snippet is one retrieved context fragment, most relevant first.
type Snippet struct {
	Title string
	Text  string
	Score float64
}

// Retriever assembles grounding context for a chat turn.
type Retriever struct {
	embedder Embedder
	store    ContentSearcher
	logger   *slog.Logger
}

// New creates a Retriever.
func New(embedder Embedder, store ContentSearcher, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: embedder, store: store, logger: logger}
}

// Retrieve returns context snippets for a user query, most relevant first.
// Retrieval failure is never fatal for a chat turn: on any error the
// result is an empty slice and the generator falls back to history-only
// answering.
func (r *Retriever) Retrieve(ctx context.Context, query string) []Snippet {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, answering without context", "error", err)
		return nil
	}

	results, err := r.store.SearchContent(ctx, embedding, topK, inferFilter(query))
	if err != nil {
		r.logger.Warn("content search failed, answering without context", "error", err)
		return nil
	}

	snippets := make([]Snippet, 0, len(results))
	budget := maxContextChars
	for _, res := range results {
		text := res.Text
		if len(text) > budget {
			// Cutting a snippet down to the remaining budget spends it:
			// whatever slack word-boundary truncation leaves is too small
			// to admit another item without mid-word fragments.
			if cut := truncateAtWord(text, budget); cut != "" {
				snippets = append(snippets, Snippet{Title: res.Title, Text: cut, Score: res.Score})
			}
			break
		}
		snippets = append(snippets, Snippet{Title: res.Title, Text: text, Score: res.Score})
		budget -= len(text)
		if budget <= 0 {
			break
		}
	}
	return snippets
}

// Render formats snippets into a single context block for the system prompt.
func Render(snippets []Snippet) string {
	if len(snippets) == 0 {
		return ""
	}
	parts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		parts = append(parts, fmt.Sprintf("## %s\n%s", s.Title, s.Text))
	}
	return strings.Join(parts, "\n---\n")
}

// inferFilter narrows the search when the query names a content type
// explicitly. Anything else searches across all types.
func inferFilter(query string) db.Filter {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "blog") || strings.Contains(q, "article"):
		return db.Filter{Type: models.ContentBlog}
	case strings.Contains(q, "faq"):
		return db.Filter{Type: models.ContentFAQ}
	default:
		return db.Filter{}
	}
}

// truncateAtWord cuts text to at most max characters, backing up to the
// previous word boundary when one is reasonably close.
func truncateAtWord(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	if idx := strings.LastIndexByte(cut, ' '); idx > max/2 {
		cut = cut[:idx]
	}
	return cut
}
