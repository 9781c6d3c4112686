package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/avvvet/travelbuddy-intent/internal/nlu"
)

var (
	analyzeDestination string
	analyzeHotel       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <message>",
	Short: "Extract entities and classify the intent of a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")

		var ctx *nlu.ConversationContext
		if analyzeDestination != "" || analyzeHotel != "" {
			ctx = &nlu.ConversationContext{Destination: analyzeDestination, SelectedHotel: analyzeHotel}
		}

		svc := nlu.NewIntentService(newLogger())
		intent := svc.AnalyzeMessage(message, ctx)
		check := svc.ValidateIntent(intent)

		return render(cmd, intent, func(w io.Writer) {
			fmt.Fprintln(w, headerStyle.Render("Intent"))
			field(w, "type", intent.Type)
			field(w, "confidence", scoreStyle.Render(fmt.Sprintf("%.2f", intent.Confidence)))
			for _, e := range check.Errors {
				fmt.Fprintln(w, "  "+warnStyle.Render("⚠ "+e))
			}

			fmt.Fprintln(w, headerStyle.Render("Entities"))
			out, err := yaml.Marshal(intent.Entities)
			if err == nil && strings.TrimSpace(string(out)) != "{}" {
				for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
					fmt.Fprintln(w, "  "+line)
				}
			} else {
				fmt.Fprintln(w, "  "+labelStyle.Render("none"))
			}

			fmt.Fprintln(w, headerStyle.Render("Suggestions"))
			for _, s := range intent.Suggestions {
				fmt.Fprintln(w, "  - "+s)
			}
		})
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDestination, "destination", "", "Destination already known from earlier turns")
	analyzeCmd.Flags().StringVar(&analyzeHotel, "hotel", "", "Hotel already selected in earlier turns")
	rootCmd.AddCommand(analyzeCmd)
}
