package handlers

import (
	"regexp"
	"strings"

	"github.com/avvvet/travelbuddy-intent/internal/nlu"
	"github.com/avvvet/travelbuddy-intent/internal/rag"
	"github.com/avvvet/travelbuddy-intent/internal/session"
	"github.com/avvvet/travelbuddy-intent/internal/validation"
)

var (
	emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+(\.[\w-]+)+`)
	phoneInText  = regexp.MustCompile(`(?:\+\d{1,3}\s?)?\d{3}[\s-]?\d{3,4}[\s-]?\d{4}`)
	nameInText   = regexp.MustCompile(`(?i)(?:my name is|اسمي)\s+(\p{L}+(?:\s+\p{L}+)?)`)
)

// metaPatch turns this turn's entities and contact details into a Meta
// patch and picks the next step.
func (h *ChatHandler) metaPatch(t *turn) session.Meta {
	e := t.intent.Entities
	patch := session.Meta{
		Destination:   e.Destination,
		Travelers:     e.Travelers,
		MealPlan:      e.MealPlan,
		RoomType:      e.RoomType,
		SelectedHotel: t.selected,
		Language:      t.lang,
	}

	if e.Budget > 0 {
		patch.Budget = session.AmountBudget(e.Budget)
	} else if e.PriceRange != nil {
		patch.Budget = &session.Budget{Min: e.PriceRange.Min, Max: e.PriceRange.Max, Label: "range"}
	}

	if f := sessionFilters(e); f != nil {
		patch.Filters = f
	}

	h.applyDates(&patch, e.Dates, t.lang)
	h.applyContact(&patch, t.message, t.lang)

	patch.Step = nextStep(t.meta, patch, t.intent.Type)
	return patch
}

func (h *ChatHandler) applyDates(patch *session.Meta, dates *nlu.DateRange, lang string) {
	if dates == nil || dates.Start == "" {
		return
	}

	if dates.End != "" {
		if res := h.validator.ValidateDateRange(dates.Start, dates.End, lang); res.Valid {
			dr := res.CorrectedValue.(validation.DateRange)
			patch.StartDate = dr.Start
			patch.EndDate = dr.End
			return
		}
	}
	if res := h.validator.ValidateDate(dates.Start, lang); res.Valid {
		patch.StartDate = res.CorrectedValue.(string)
	}
}

func (h *ChatHandler) applyContact(patch *session.Meta, message, lang string) {
	if m := emailPattern.FindString(message); m != "" {
		if res := h.validator.ValidateEmail(m, lang); res.Valid {
			patch.Email = res.CorrectedValue.(string)
		}
	}
	if m := phoneInText.FindString(message); m != "" {
		if res := h.validator.ValidatePhone(m, lang); res.Valid {
			patch.Phone = res.CorrectedValue.(string)
		}
	}
	if m := nameInText.FindStringSubmatch(message); m != nil {
		if res := h.validator.ValidateName(m[1], lang); res.Valid {
			patch.Name = strings.Join(strings.Fields(m[1]), " ")
		}
	}
}

// nextStep derives the furthest main-flow step the merged state supports.
// It never moves backwards along the main flow; side-branch intents jump to
// their branch from any step.
func nextStep(cur, patch session.Meta, intent nlu.IntentType) session.Step {
	switch intent {
	case nlu.IntentBookingModification:
		return session.StepBookingModification
	case nlu.IntentSupportRequest:
		return session.StepSupportContact
	case nlu.IntentGeneralQuestion:
		return session.StepGeneralInquiry
	}

	m := merged(cur, patch)
	derived := session.StepInitial

	switch {
	case m.Destination == "":
	case m.StartDate == "":
		derived = session.StepDestinationSelected
	case m.Travelers == 0:
		derived = session.StepDatesSelected
	case m.Budget == nil:
		derived = session.StepTravelersSelected
	default:
		derived = session.StepReadyForOffers
	}

	if m.SelectedHotel != "" {
		derived = session.StepHotelSelected
		if m.MealPlan != "" {
			derived = session.StepMealSelected
			if m.RoomType != "" {
				derived = session.StepRoomSelected
			}
		}
		if m.Phone != "" || m.Email != "" {
			derived = session.StepContactInfo
			if intent == nlu.IntentBookingRequest && m.Phone != "" && m.Email != "" {
				derived = session.StepBookingConfirmed
			}
		}
	}

	current := cur.CurrentStep()
	if flowIndex(current) > flowIndex(derived) {
		return current
	}
	return derived
}

// merged previews the stored state after the patch for the fields nextStep reads.
func merged(cur, patch session.Meta) session.Meta {
	if patch.Destination != "" {
		cur.Destination = patch.Destination
	}
	if patch.StartDate != "" {
		cur.StartDate = patch.StartDate
	}
	if patch.Travelers != 0 {
		cur.Travelers = patch.Travelers
	}
	if patch.Budget != nil {
		cur.Budget = patch.Budget
	}
	if patch.SelectedHotel != "" {
		cur.SelectedHotel = patch.SelectedHotel
	}
	if patch.MealPlan != "" {
		cur.MealPlan = patch.MealPlan
	}
	if patch.RoomType != "" {
		cur.RoomType = patch.RoomType
	}
	if patch.Phone != "" {
		cur.Phone = patch.Phone
	}
	if patch.Email != "" {
		cur.Email = patch.Email
	}
	return cur
}

// flowIndex is -1 for side-branch steps.
func flowIndex(step session.Step) int {
	for i, s := range session.Flow {
		if s == step {
			return i
		}
	}
	return -1
}

func sessionFilters(e nlu.Entities) *session.Filters {
	if e.Stars == 0 && e.PriceRange == nil && e.MealPlan == "" && len(e.Amenities) == 0 {
		return nil
	}
	f := &session.Filters{Stars: e.Stars, MealPlan: e.MealPlan, Amenities: e.Amenities}
	if e.PriceRange != nil {
		f.MinPrice = e.PriceRange.Min
		f.MaxPrice = e.PriceRange.Max
	}
	return f
}

func hotelFilters(e nlu.Entities) rag.HotelFilters {
	f := rag.HotelFilters{Stars: e.Stars, MealPlan: e.MealPlan, Amenities: e.Amenities}
	if e.PriceRange != nil {
		if e.PriceRange.Min != nil {
			f.MinPrice = *e.PriceRange.Min
		}
		if e.PriceRange.Max != nil {
			f.MaxPrice = *e.PriceRange.Max
		}
	}
	return f
}

func maxPrice(e nlu.Entities) float64 {
	if e.PriceRange != nil && e.PriceRange.Max != nil {
		return *e.PriceRange.Max
	}
	return 0
}
