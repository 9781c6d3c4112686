package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/avvvet/travelbuddy-intent/internal/nlu"
)

// ErrEmptyID is returned by callers that validate user ids before touching
// the store. The Manager itself does not check.
var ErrEmptyID = errors.New("user id is required")

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Step is the position in the booking conversation flow.
type Step string

const (
	StepInitial             Step = "initial"
	StepDestinationSelected Step = "destination_selected"
	StepDatesSelected       Step = "dates_selected"
	StepTravelersSelected   Step = "travelers_selected"
	StepBudgetSelected      Step = "budget_selected"
	StepReadyForOffers      Step = "ready_for_offers"
	StepHotelSelected       Step = "hotel_selected"
	StepMealSelected        Step = "meal_selected"
	StepRoomSelected        Step = "room_selected"
	StepContactInfo         Step = "contact_info"
	StepBookingConfirmed    Step = "booking_confirmed"

	// Side branches, reachable from any step
	StepBookingModification Step = "booking_modification"
	StepSupportContact      Step = "support_contact"
	StepGeneralInquiry      Step = "general_inquiry"
)

// Flow is the intended linear order of the main steps. The store does not
// enforce it.
var Flow = []Step{
	StepInitial,
	StepDestinationSelected,
	StepDatesSelected,
	StepTravelersSelected,
	StepBudgetSelected,
	StepReadyForOffers,
	StepHotelSelected,
	StepMealSelected,
	StepRoomSelected,
	StepContactInfo,
	StepBookingConfirmed,
}

// Budget is either a bare amount or a named range; exactly one form is set.
// It encodes to JSON as a number or as {"min","max","label"}.
type Budget struct {
	Amount *float64
	Min    *float64
	Max    *float64
	Label  string
}

type budgetRange struct {
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Label string   `json:"label,omitempty"`
}

// AmountBudget is a Budget holding a bare number.
func AmountBudget(amount float64) *Budget {
	return &Budget{Amount: &amount}
}

// IsAmount reports whether b is the bare-number form.
func (b Budget) IsAmount() bool {
	return b.Amount != nil
}

func (b Budget) MarshalJSON() ([]byte, error) {
	if b.Amount != nil {
		return json.Marshal(*b.Amount)
	}
	return json.Marshal(budgetRange{Min: b.Min, Max: b.Max, Label: b.Label})
}

func (b *Budget) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var amount float64
		if err := json.Unmarshal(data, &amount); err != nil {
			return err
		}
		*b = Budget{Amount: &amount}
		return nil
	}
	var r budgetRange
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*b = Budget{Min: r.Min, Max: r.Max, Label: r.Label}
	return nil
}

// Filters narrow hotel lookups for the session.
type Filters struct {
	Stars     int      `json:"stars,omitempty"`
	MinPrice  *float64 `json:"min_price,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	MealPlan  string   `json:"meal_plan,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
}

// Meta is the per-user booking state. UpdateMeta merges a patch shallowly:
// zero-valued fields in the patch leave the stored value untouched, nested
// values (Budget, Filters) are replaced whole, and Extras merges key by key.
type Meta struct {
	Destination   string                 `json:"destination,omitempty"`
	StartDate     string                 `json:"start_date,omitempty"`
	EndDate       string                 `json:"end_date,omitempty"`
	Travelers     int                    `json:"travelers,omitempty"`
	Budget        *Budget                `json:"budget,omitempty"`
	Step          Step                   `json:"step,omitempty"`
	PreviousStep  Step                   `json:"previous_step,omitempty"`
	SelectedHotel string                 `json:"selected_hotel,omitempty"`
	MealPlan      string                 `json:"meal_plan,omitempty"`
	RoomType      string                 `json:"room_type,omitempty"`
	Filters       *Filters               `json:"filters,omitempty"`
	Name          string                 `json:"name,omitempty"`
	Phone         string                 `json:"phone,omitempty"`
	Email         string                 `json:"email,omitempty"`
	Language      string                 `json:"language,omitempty"`
	Extras        map[string]interface{} `json:"extras,omitempty"`
}

// CurrentStep treats an unset step as StepInitial.
func (m Meta) CurrentStep() Step {
	if m.Step == "" {
		return StepInitial
	}
	return m.Step
}

// StepChanged reports whether the latest update moved the step.
func (m Meta) StepChanged() bool {
	return m.Step != m.PreviousStep
}

// Turn is one user/bot exchange in the bounded conversation log.
type Turn struct {
	ID          string        `json:"id"`
	UserMessage string        `json:"user_message"`
	BotResponse string        `json:"bot_response"`
	Timestamp   time.Time     `json:"timestamp"`
	Intent      string        `json:"intent,omitempty"`
	Entities    *nlu.Entities `json:"entities,omitempty"`
}

// ContextMemory is short-term recall used to resolve references like "the
// first one". UpdateContextMemory merges it with the same rules as Meta.
type ContextMemory struct {
	LastMentionedHotel       string                 `json:"last_mentioned_hotel,omitempty"`
	LastMentionedDestination string                 `json:"last_mentioned_destination,omitempty"`
	LastMentionedPrice       *float64               `json:"last_mentioned_price,omitempty"`
	LastShownHotels          []string               `json:"last_shown_hotels,omitempty"`
	LastComparedHotels       []string               `json:"last_compared_hotels,omitempty"`
	ImplicitReferences       map[string]interface{} `json:"implicit_references,omitempty"`
}

// KV stores one kind of per-user state keyed by user id.
// This allows swapping the in-process cache for Redis without touching callers.
type KV[T any] interface {
	// Get returns the stored value and whether it existed
	Get(ctx context.Context, id string) (T, bool, error)

	// Set replaces the stored value
	Set(ctx context.Context, id string, value T) error

	// Delete removes the value; deleting a missing id is not an error
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored ids
	Count(ctx context.Context) (int, error)
}

// Backend groups the four per-user stores. All four are keyed by the same
// user id and cleared together by Manager.ClearAllUserData.
type Backend struct {
	Messages KV[[]Message]
	Meta     KV[Meta]
	History  KV[[]Turn]
	Context  KV[ContextMemory]
}
