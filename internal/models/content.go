package models

// ContentType classifies an indexed content item.
type ContentType string

const (
	ContentBlog     ContentType = "blog"
	ContentSolution ContentType = "solution"
	ContentService  ContentType = "service"
	ContentFAQ      ContentType = "faq"
)

// ContentMeta carries optional classification metadata for a content item.
type ContentMeta struct {
	Category string `json:"category,omitempty"`
	Language string `json:"language,omitempty"`
	Industry string `json:"industry,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ContentItem is the output contract of the indexing job: a piece of site
// content with its embedding vector. The conversational core consumes these
// read-only.
type ContentItem struct {
	ID        string      `json:"id"`
	Type      ContentType `json:"type"`
	Title     string      `json:"title"`
	Text      string      `json:"text"`
	Embedding []float32   `json:"embedding,omitempty"`
	Meta      ContentMeta `json:"meta"`
}

// ScoredContent pairs a content item with its similarity score for a query.
type ScoredContent struct {
	ContentItem
	Score float64 `json:"score"`
}
