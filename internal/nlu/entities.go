package nlu

import "unicode"

// Entities is the optional-field bag extracted from one message. Zero values
// mean "not found".
type Entities struct {
	Destination string      `json:"destination,omitempty" yaml:"destination,omitempty"`
	HotelName   string      `json:"hotel_name,omitempty" yaml:"hotel_name,omitempty"`
	HotelNames  []string    `json:"hotel_names,omitempty" yaml:"hotel_names,omitempty"`
	Stars       int         `json:"stars,omitempty" yaml:"stars,omitempty"`
	PriceRange  *PriceRange `json:"price_range,omitempty" yaml:"price_range,omitempty"`
	Dates       *DateRange  `json:"dates,omitempty" yaml:"dates,omitempty"`
	Travelers   int         `json:"travelers,omitempty" yaml:"travelers,omitempty"`
	Budget      float64     `json:"budget,omitempty" yaml:"budget,omitempty"`
	MealPlan    string      `json:"meal_plan,omitempty" yaml:"meal_plan,omitempty"`
	RoomType    string      `json:"room_type,omitempty" yaml:"room_type,omitempty"`
	Amenities   []string    `json:"amenities,omitempty" yaml:"amenities,omitempty"`
	Language    string      `json:"language,omitempty" yaml:"language,omitempty"`
}

// PriceRange has either bound, or both.
type PriceRange struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// DateRange holds raw date tokens as written by the user ("15/11", "november").
type DateRange struct {
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// Entity keys used by the intent catalog's required-entity lists.
const (
	EntityDestination = "destination"
	EntityHotelName   = "hotelName"
	EntityHotelNames  = "hotelNames"
	EntityStars       = "stars"
	EntityPriceRange  = "priceRange"
	EntityDates       = "dates"
	EntityTravelers   = "travelers"
	EntityBudget      = "budget"
	EntityMealPlan    = "mealPlan"
	EntityRoomType    = "roomType"
	EntityAmenities   = "amenities"
)

// Has reports whether the entity named by key was found.
func (e Entities) Has(key string) bool {
	switch key {
	case EntityDestination:
		return e.Destination != ""
	case EntityHotelName:
		return e.HotelName != ""
	case EntityHotelNames:
		return len(e.HotelNames) > 0
	case EntityStars:
		return e.Stars > 0
	case EntityPriceRange:
		return e.PriceRange != nil
	case EntityDates:
		return e.Dates != nil
	case EntityTravelers:
		return e.Travelers > 0
	case EntityBudget:
		return e.Budget > 0
	case EntityMealPlan:
		return e.MealPlan != ""
	case EntityRoomType:
		return e.RoomType != ""
	case EntityAmenities:
		return len(e.Amenities) > 0
	}
	return false
}

const (
	LangArabic  = "ar"
	LangEnglish = "en"
)

// DetectLanguage returns "ar" when text contains any Arabic letter.
func DetectLanguage(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Arabic, r) && unicode.IsLetter(r) {
			return LangArabic
		}
	}
	return LangEnglish
}

func floatPtr(f float64) *float64 {
	return &f
}
