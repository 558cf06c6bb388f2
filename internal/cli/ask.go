package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/induxo/chatcore/internal/generator"
	"github.com/induxo/chatcore/internal/retriever"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-shot question against the knowledge base",
	Long: `Ask a question through the same retrieve-and-generate pipeline the
chat channels use: embed the question, pull the most relevant content,
and synthesize an answer with the configured completion models.

Examples:
  chatcore ask "What automation services do you offer?"
  chatcore ask "Do you work with food-industry clients?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	theme := defaultTheme

	emb, err := getEmbedder()
	if err != nil {
		return err
	}
	comp, err := getCompleter(ctx)
	if err != nil {
		return err
	}

	ret := retriever.New(emb, dbClient, slog.Default())
	gen := generator.New(ret, comp, nil, slog.Default())

	reply := gen.Respond(ctx, args[0], nil)

	fmt.Println(theme.titleStyle().Render("Answer"))
	fmt.Println(reply.Message)
	if reply.NeedsAgent {
		fmt.Println(theme.hintStyle().Render("(this turn would be flagged for human hand-off)"))
	}

	return nil
}
