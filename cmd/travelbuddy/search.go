package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avvvet/travelbuddy-intent/internal/nlu"
	"github.com/avvvet/travelbuddy-intent/internal/rag"
)

var (
	searchLang  string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank offer chunks against a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		svc, err := loadOffers()
		if err != nil {
			return err
		}

		lang := searchLang
		if lang == "" {
			lang = nlu.DetectLanguage(query)
		}

		result, err := svc.SmartSearch(query, rag.RetrieveOptions{Lang: lang, Limit: searchLimit})
		if err != nil {
			return fmt.Errorf("failed to search: %w", err)
		}

		return render(cmd, result, func(w io.Writer) {
			fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Results for"), result.Query)
			if len(result.Chunks) == 0 {
				fmt.Fprintln(w, "  "+labelStyle.Render("no matching chunks"))
				return
			}
			for _, c := range result.Chunks {
				fmt.Fprintf(w, "  %s %s\n", scoreStyle.Render(fmt.Sprintf("[%3d]", c.Score)), idStyle.Render(c.ID))
				fmt.Fprintf(w, "        %s\n", truncate(c.Text, 100))
			}
		})
	},
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func init() {
	searchCmd.Flags().StringVar(&searchLang, "lang", "", "Preferred chunk language, ar or en (default: detected from the query)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", rag.DefaultLimit, "Maximum number of chunks")
	rootCmd.AddCommand(searchCmd)
}
