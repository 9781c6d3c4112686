package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avvvet/travelbuddy-intent/internal/validation"
)

var validateLang string

var validateKinds = map[string]func(v *validation.Service, args []string, lang string) (validation.Result, error){
	"date": func(v *validation.Service, args []string, lang string) (validation.Result, error) {
		return v.ValidateDate(strings.Join(args, " "), lang), nil
	},
	"dates": func(v *validation.Service, args []string, lang string) (validation.Result, error) {
		if len(args) != 2 {
			return validation.Result{}, fmt.Errorf("dates needs a start and an end date")
		}
		return v.ValidateDateRange(args[0], args[1], lang), nil
	},
	"price": func(v *validation.Service, args []string, lang string) (validation.Result, error) {
		return v.ValidatePrice(strings.Join(args, " "), lang), nil
	},
	"price-range": func(v *validation.Service, args []string, lang string) (validation.Result, error) {
		if len(args) != 2 {
			return validation.Result{}, fmt.Errorf("price-range needs a minimum and a maximum")
		}
		minPrice, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return validation.Result{}, fmt.Errorf("invalid minimum: %w", err)
		}
		maxPrice, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return validation.Result{}, fmt.Errorf("invalid maximum: %w", err)
		}
		return v.ValidatePriceRange(minPrice, maxPrice, lang), nil
	},
	"travelers": func(v *validation.Service, args []string, lang string) (validation.Result, error) {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return validation.Result{}, fmt.Errorf("invalid count: %w", err)
		}
		return v.ValidateTravelers(n, lang), nil
	},
	"stars": func(v *validation.Service, args []string, lang string) (validation.Result, error) {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return validation.Result{}, fmt.Errorf("invalid rating: %w", err)
		}
		return v.ValidateStars(n, lang), nil
	},
	"email": func(v *validation.Service, args []string, lang string) (validation.Result, error) {
		return v.ValidateEmail(args[0], lang), nil
	},
	"phone": func(v *validation.Service, args []string, lang string) (validation.Result, error) {
		return v.ValidatePhone(strings.Join(args, " "), lang), nil
	},
	"name": func(v *validation.Service, args []string, lang string) (validation.Result, error) {
		return v.ValidateName(strings.Join(args, " "), lang), nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <kind> <value>...",
	Short: "Validate booking input (date, dates, price, price-range, travelers, stars, email, phone, name)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		check, ok := validateKinds[args[0]]
		if !ok {
			return fmt.Errorf("unknown kind %q", args[0])
		}

		result, err := check(validation.NewService(nil), args[1:], validateLang)
		if err != nil {
			return err
		}

		return render(cmd, result, func(w io.Writer) {
			if result.Valid {
				fmt.Fprintln(w, okStyle.Render("✓ valid"))
			} else {
				fmt.Fprintln(w, errorStyle.Render("✗ invalid"))
			}
			for _, e := range result.Errors {
				fmt.Fprintln(w, "  "+errorStyle.Render(e))
			}
			for _, warning := range result.Warnings {
				fmt.Fprintln(w, "  "+warnStyle.Render(warning))
			}
			if result.CorrectedValue != nil {
				field(w, "value", result.CorrectedValue)
			}
		})
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateLang, "lang", "en", "Message language, ar or en")
	rootCmd.AddCommand(validateCmd)
}
