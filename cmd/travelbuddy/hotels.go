package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avvvet/travelbuddy-intent/internal/nlu"
	"github.com/avvvet/travelbuddy-intent/internal/prompts"
	"github.com/avvvet/travelbuddy-intent/internal/rag"
)

var (
	hotelStars     int
	hotelMinPrice  float64
	hotelMaxPrice  float64
	hotelMealPlan  string
	hotelAmenities []string
	hotelLang      string
)

var hotelsCmd = &cobra.Command{
	Use:   "hotels <destination>",
	Short: "List a destination's hotels, optionally filtered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadOffers()
		if err != nil {
			return err
		}

		destination := destinationCode(args[0])
		hotels, err := svc.SearchHotels(destination, rag.HotelFilters{
			Stars:     hotelStars,
			MinPrice:  hotelMinPrice,
			MaxPrice:  hotelMaxPrice,
			MealPlan:  strings.ToUpper(hotelMealPlan),
			Amenities: hotelAmenities,
		})
		if err != nil {
			return err
		}

		return render(cmd, hotels, func(w io.Writer) {
			title := fmt.Sprintf("%s: %d hotels", rag.DestinationName(destination, hotelLang), len(hotels))
			fmt.Fprintln(w, headerStyle.Render(title))
			fmt.Fprint(w, prompts.FormatHotels(hotels, hotelLang))
		})
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <hotel> <hotel>...",
	Short: "Look up several hotels side by side",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadOffers()
		if err != nil {
			return err
		}

		hotels, err := svc.CompareHotels(args, "")
		if err != nil {
			return err
		}

		return render(cmd, hotels, func(w io.Writer) {
			fmt.Fprintln(w, headerStyle.Render("Comparison"))
			for _, h := range hotels {
				fmt.Fprintf(w, "  %s\n", h.DisplayName(hotelLang))
				field(w, "  stars", h.Stars)
				field(w, "  price", fmt.Sprintf("%.0f %s", h.Price, h.Currency))
				field(w, "  meals", nlu.MealPlanName(h.MealPlan, hotelLang))
				if len(h.Amenities) > 0 {
					field(w, "  amenities", strings.Join(h.Amenities, ", "))
				}
			}
		})
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [destination]",
	Short: "Recommend the best rated hotels",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadOffers()
		if err != nil {
			return err
		}

		prefs := rag.Preferences{
			Stars:     hotelStars,
			MaxPrice:  hotelMaxPrice,
			MealPlan:  strings.ToUpper(hotelMealPlan),
			Amenities: hotelAmenities,
		}
		if len(args) == 1 {
			prefs.Destination = destinationCode(args[0])
		}

		recs, err := svc.GetRecommendations(prefs, hotelLang)
		if err != nil {
			return err
		}

		return render(cmd, recs, func(w io.Writer) {
			fmt.Fprintln(w, headerStyle.Render("Recommendations"))
			for i, r := range recs {
				fmt.Fprintf(w, "  %d. %s %s %s\n", i+1, r.Hotel.DisplayName(hotelLang),
					strings.Repeat("⭐", r.Hotel.Stars), labelStyle.Render(r.Title))
			}
		})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <destination> [category]",
	Short: "Show offer sections for a destination (overview, hotels, visa, ...)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadOffers()
		if err != nil {
			return err
		}

		category := ""
		if len(args) == 2 {
			category = args[1]
		}

		chunks, err := svc.GetDestinationInfo(destinationCode(args[0]), category, hotelLang)
		if err != nil {
			return err
		}

		return render(cmd, chunks, func(w io.Writer) {
			for _, c := range chunks {
				fmt.Fprintf(w, "%s %s\n", headerStyle.Render(c.Title), idStyle.Render(c.ID))
				fmt.Fprintln(w, c.Text)
				fmt.Fprintln(w)
			}
		})
	},
}

// destinationCode accepts a code or any name the extractor knows.
func destinationCode(arg string) string {
	if code := nlu.ExtractDestination(arg); code != "" {
		return code
	}
	return strings.ToLower(arg)
}

func init() {
	for _, c := range []*cobra.Command{hotelsCmd, recommendCmd} {
		c.Flags().IntVar(&hotelStars, "stars", 0, "Star rating (exact for hotels, minimum for recommend)")
		c.Flags().Float64Var(&hotelMaxPrice, "max-price", 0, "Maximum price per person")
		c.Flags().StringVar(&hotelMealPlan, "meal", "", "Meal plan code: AI, FB, HB or BB")
		c.Flags().StringSliceVar(&hotelAmenities, "amenity", nil, "Required amenity (repeatable)")
	}
	hotelsCmd.Flags().Float64Var(&hotelMinPrice, "min-price", 0, "Minimum price per person")

	for _, c := range []*cobra.Command{hotelsCmd, compareCmd, recommendCmd, infoCmd} {
		c.Flags().StringVar(&hotelLang, "lang", rag.LangEnglish, "Output language, ar or en")
		rootCmd.AddCommand(c)
	}
}
