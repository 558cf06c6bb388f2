package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/induxo/chatcore/internal/models"
)

// embedBatchSize bounds how many texts go to the embedding provider per call.
const embedBatchSize = 32

var indexCmd = &cobra.Command{
	Use:   "index <file.json>",
	Short: "Index content items into the knowledge base",
	Long: `Index a JSON file of content items into the vector store.

The file holds an array of items with type, title, text and optional
metadata. Items without an embedding are embedded before upserting;
items without an id get a generated one. Re-indexing an existing id
overwrites the stored item.

Examples:
  chatcore index content/faq.json
  chatcore index content/solutions.json --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	theme := defaultTheme

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read content file: %w", err)
	}

	var items []models.ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse content file: %w", err)
	}
	if len(items) == 0 {
		fmt.Println(theme.hintStyle().Render("Nothing to index."))
		return nil
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}

	if err := embedMissing(ctx, items); err != nil {
		return err
	}

	for i, item := range items {
		if err := dbClient.UpsertContent(ctx, item); err != nil {
			return fmt.Errorf("upsert %q: %w", item.Title, err)
		}
		fmt.Printf("%s %s [%s] (%d/%d)\n",
			theme.successStyle().Render("✓"), item.Title, item.Type, i+1, len(items))
	}

	fmt.Println(theme.titleStyle().Render(fmt.Sprintf("Indexed %d items.", len(items))))
	return nil
}

// embedMissing fills in embeddings for items that arrived without one,
// batching provider calls.
func embedMissing(ctx context.Context, items []models.ContentItem) error {
	var pending []int
	for i, item := range items {
		if len(item.Embedding) == 0 {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	emb, err := getEmbedder()
	if err != nil {
		return err
	}

	for start := 0; start < len(pending); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for j, idx := range batch {
			texts[j] = items[idx].Title + "\n" + items[idx].Text
		}

		vectors, err := emb.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		for j, idx := range batch {
			items[idx].Embedding = vectors[j]
		}
	}

	return nil
}
