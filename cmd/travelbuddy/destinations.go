package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/avvvet/travelbuddy-intent/internal/rag"
)

type destinationRow struct {
	Code    string `json:"code" yaml:"code"`
	English string `json:"en" yaml:"en"`
	Arabic  string `json:"ar" yaml:"ar"`
	Hotels  int    `json:"hotels" yaml:"hotels"`
}

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "List destinations that have an offer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadOffers()
		if err != nil {
			return err
		}

		codes, err := svc.Destinations()
		if err != nil {
			return err
		}

		rows := make([]destinationRow, 0, len(codes))
		for _, code := range codes {
			row := destinationRow{
				Code:    code,
				English: rag.DestinationName(code, rag.LangEnglish),
				Arabic:  rag.DestinationName(code, rag.LangArabic),
			}
			if offer, ok, _ := svc.Offer(code); ok {
				row.Hotels = len(offer.Hotels)
			}
			rows = append(rows, row)
		}

		return render(cmd, rows, func(w io.Writer) {
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d destinations", len(rows))))
			for _, r := range rows {
				fmt.Fprintf(w, "  %-16s %s / %s %s\n", idStyle.Render(r.Code), r.English, r.Arabic,
					labelStyle.Render(fmt.Sprintf("(%d hotels)", r.Hotels)))
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(destinationsCmd)
}
