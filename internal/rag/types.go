package rag

import "fmt"

// Chunk categories
const (
	CategoryOverview = "overview"
	CategoryValidity = "validity"
	CategoryHotels   = "hotels"
	CategoryIncludes = "includes"
	CategoryExcludes = "excludes"
	CategoryVisa     = "visa"
	CategoryTours    = "tours"
	CategoryNotes    = "notes"
)

const (
	LangArabic  = "ar"
	LangEnglish = "en"
)

// Localized is a bilingual string as found in offer files.
type Localized struct {
	EN string `json:"en,omitempty" yaml:"en,omitempty"`
	AR string `json:"ar,omitempty" yaml:"ar,omitempty"`
}

// Get returns the text for lang; it does not fall back.
func (l Localized) Get(lang string) string {
	if lang == LangArabic {
		return l.AR
	}
	return l.EN
}

// Or returns the text for lang, falling back to English.
func (l Localized) Or(lang string) string {
	if s := l.Get(lang); s != "" {
		return s
	}
	return l.EN
}

// LocalizedList is a bilingual bullet list.
type LocalizedList struct {
	EN []string `json:"en,omitempty"`
	AR []string `json:"ar,omitempty"`
}

func (l LocalizedList) Get(lang string) []string {
	if lang == LangArabic {
		return l.AR
	}
	return l.EN
}

// Hotel is one priced stay inside an offer.
type Hotel struct {
	Name        string   `json:"name" yaml:"name"`
	NameAR      string   `json:"name_ar,omitempty" yaml:"name_ar,omitempty"`
	Stars       int      `json:"stars" yaml:"stars"`
	Price       float64  `json:"price" yaml:"price"`
	Currency    string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	MealPlan    string   `json:"meal_plan,omitempty" yaml:"meal_plan,omitempty"`
	RoomTypes   []string `json:"room_types,omitempty" yaml:"room_types,omitempty"`
	Amenities   []string `json:"amenities,omitempty" yaml:"amenities,omitempty"`
	Destination string   `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// DisplayName prefers the Arabic name for Arabic output.
func (h Hotel) DisplayName(lang string) string {
	if lang == LangArabic && h.NameAR != "" {
		return h.NameAR
	}
	return h.Name
}

type Tour struct {
	Name     Localized `json:"name"`
	Price    float64   `json:"price,omitempty"`
	Currency string    `json:"currency,omitempty"`
}

// Offer is one parsed offer document.
type Offer struct {
	Title         Localized     `json:"title"`
	Location      string        `json:"location,omitempty"`
	Validity      Localized     `json:"validity"`
	Hotels        []Hotel       `json:"hotels,omitempty"`
	PriceIncludes LocalizedList `json:"price_includes"`
	PriceExcludes LocalizedList `json:"price_excludes"`
	Visa          Localized     `json:"visa"`
	OptionalTours []Tour        `json:"optional_tours,omitempty"`
	Notes         LocalizedList `json:"notes"`

	// Set by the loader
	Source      string `json:"-"`
	Destination string `json:"-"`
}

type ChunkMetadata struct {
	Category string   `json:"category" yaml:"category"`
	Hotels   []string `json:"hotels,omitempty" yaml:"hotels,omitempty"`
	Tours    []string `json:"tours,omitempty" yaml:"tours,omitempty"`
}

// Chunk is one retrievable unit of offer text. Chunks are immutable after load.
type Chunk struct {
	ID          string         `json:"id" yaml:"id"`
	Source      string         `json:"source" yaml:"source"`
	Destination string         `json:"destination,omitempty" yaml:"destination,omitempty"`
	Section     string         `json:"section,omitempty" yaml:"section,omitempty"`
	Lang        string         `json:"lang" yaml:"lang"`
	Title       string         `json:"title,omitempty" yaml:"title,omitempty"`
	Text        string         `json:"text" yaml:"text"`
	Metadata    *ChunkMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	keywords []string
}

type ScoredChunk struct {
	Chunk `yaml:",inline"`
	Score int `json:"score" yaml:"score"`
}

type SearchResult struct {
	Query  string        `json:"query" yaml:"query"`
	Chunks []ScoredChunk `json:"chunks" yaml:"chunks"`
}

// RetrieveOptions; Limit defaults to DefaultLimit when not positive.
type RetrieveOptions struct {
	Lang  string
	Limit int
}

// HotelFilters narrow SearchHotels. Zero fields are ignored.
type HotelFilters struct {
	Stars     int
	MinPrice  float64
	MaxPrice  float64
	MealPlan  string
	Amenities []string
}

// Preferences drive GetRecommendations. Stars is a minimum.
type Preferences struct {
	Destination string
	Stars       int
	MaxPrice    float64
	MealPlan    string
	Amenities   []string
}

type Recommendation struct {
	Hotel       Hotel  `json:"hotel" yaml:"hotel"`
	Destination string `json:"destination" yaml:"destination"`
	Title       string `json:"title" yaml:"title"`
}

// LoadError is returned when the offers directory itself cannot be read.
type LoadError struct {
	Path string
	Op   string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
