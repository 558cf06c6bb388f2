package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/induxo/chatcore/internal/db"
	"github.com/induxo/chatcore/internal/models"
)

var countType string

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count indexed content items",
	Long: `Count content items in the knowledge base, optionally filtered by
content type (blog, solution, service, faq).

Examples:
  chatcore count
  chatcore count --type faq`,
	RunE: runCount,
}

func init() {
	countCmd.Flags().StringVarP(&countType, "type", "t", "", "filter by content type")
}

func runCount(cmd *cobra.Command, args []string) error {
	filter := db.Filter{Type: models.ContentType(countType)}

	n, err := dbClient.CountContent(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("count content: %w", err)
	}

	if countType != "" {
		fmt.Printf("%d items of type %s\n", n, countType)
	} else {
		fmt.Printf("%d items\n", n)
	}
	return nil
}
