package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/induxo/chatcore/internal/models"
)

// Filter restricts content queries. Zero-value fields are ignored; set
// fields combine conjunctively (AND).
type Filter struct {
	Type     models.ContentType
	Category string
	Language string
	Industry string
}

// contentRecord is the persisted shape of a content item.
type contentRecord struct {
	ID        surrealmodels.RecordID `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Text      string                 `json:"text"`
	Embedding []float32              `json:"embedding,omitempty"`
	Meta      *models.ContentMeta    `json:"meta,omitempty"`
	Score     float64                `json:"score,omitempty"`
}

func (r contentRecord) toItem() models.ContentItem {
	item := models.ContentItem{
		Type:      models.ContentType(r.Type),
		Title:     r.Title,
		Text:      r.Text,
		Embedding: r.Embedding,
	}
	if s, ok := r.ID.ID.(string); ok {
		item.ID = s
	}
	if r.Meta != nil {
		item.Meta = *r.Meta
	}
	return item
}

// UpsertContent writes a content item, replacing any previous record with
// the same id (last-write-wins). The embedding must match the index
// dimension exactly.
func (c *Client) UpsertContent(ctx context.Context, item models.ContentItem) error {
	if item.ID == "" {
		return fmt.Errorf("content id required")
	}
	if len(item.Embedding) != c.dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(item.Embedding), c.dimension)
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("content", $id) CONTENT {
			type: $type,
			title: $title,
			text: $text,
			embedding: $embedding,
			meta: $meta,
			updated: time::now()
		}
	`, map[string]any{
		"id":        item.ID,
		"type":      string(item.Type),
		"title":     item.Title,
		"text":      item.Text,
		"embedding": item.Embedding,
		"meta":      item.Meta,
	})
	if err != nil {
		return fmt.Errorf("upsert content %s: %w", item.ID, wrapStoreError(err))
	}
	return nil
}

// SearchContent returns the k content items most similar to the query
// embedding, highest cosine similarity first.
func (c *Client) SearchContent(ctx context.Context, embedding []float32, k int, filter Filter) ([]models.ScoredContent, error) {
	if len(embedding) != c.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), c.dimension)
	}
	if k <= 0 {
		k = 5
	}

	clauses, vars := filterClauses(filter)
	vars["emb"] = embedding

	// HNSW knn operator with ef=40 for recall; score projected for ordering
	sql := fmt.Sprintf(`
		SELECT id, type, title, text, meta,
			vector::similarity::cosine(embedding, $emb) AS score
		FROM content
		WHERE embedding <|%d,40|> $emb %s
		ORDER BY score DESC
	`, k, clauses)

	results, err := surrealdb.Query[[]contentRecord](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("search content: %w", wrapStoreError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.ScoredContent{}, nil
	}

	records := (*results)[0].Result
	scored := make([]models.ScoredContent, 0, len(records))
	for _, r := range records {
		scored = append(scored, models.ScoredContent{
			ContentItem: r.toItem(),
			Score:       r.Score,
		})
	}
	return scored, nil
}

// CountContent returns the number of content items matching the filter.
func (c *Client) CountContent(ctx context.Context, filter Filter) (int, error) {
	clauses, vars := filterClauses(filter)

	where := ""
	if clauses != "" {
		where = "WHERE " + strings.TrimPrefix(strings.TrimSpace(clauses), "AND ")
	}

	type countRow struct {
		Count int `json:"count"`
	}
	sql := fmt.Sprintf("SELECT count() AS count FROM content %s GROUP ALL", where)

	results, err := surrealdb.Query[[]countRow](ctx, c.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("count content: %w", wrapStoreError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}

// filterClauses builds the conjunctive WHERE fragment for a filter.
func filterClauses(f Filter) (string, map[string]any) {
	var sb strings.Builder
	vars := map[string]any{}

	if f.Type != "" {
		sb.WriteString(" AND type = $type")
		vars["type"] = string(f.Type)
	}
	if f.Category != "" {
		sb.WriteString(" AND meta.category = $category")
		vars["category"] = f.Category
	}
	if f.Language != "" {
		sb.WriteString(" AND meta.language = $language")
		vars["language"] = f.Language
	}
	if f.Industry != "" {
		sb.WriteString(" AND meta.industry = $industry")
		vars["industry"] = f.Industry
	}

	return sb.String(), vars
}
