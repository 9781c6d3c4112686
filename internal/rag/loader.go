package rag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/avvvet/travelbuddy-intent/internal/logger"
	"github.com/avvvet/travelbuddy-intent/internal/nlu"
)

// destinationTags maps substrings of the file name, title or location to a
// destination code. First match in table order wins.
var destinationTags = []struct {
	code     string
	patterns []string
}{
	{"bali", []string{"bali", "بالي"}},
	{"sharm_el_sheikh", []string{"sharm", "شرم"}},
	{"hurghada", []string{"hurghada", "غردق"}},
	{"dahab", []string{"dahab", "دهب"}},
	{"ain_sokhna", []string{"sokhna", "سخن"}},
	{"sahl_hasheesh", []string{"hasheesh", "حشيش"}},
	{"istanbul", []string{"istanbul", "turkey", "اسطنبول", "إسطنبول", "تركيا"}},
	{"beirut", []string{"beirut", "lebanon", "بيروت", "لبنان"}},
}

// Service loads offer documents lazily and answers retrieval and lookup
// queries over them.
type Service struct {
	dir    string
	logger logger.Logger

	mu     sync.Mutex
	loaded bool
	chunks []Chunk
	offers map[string]*Offer
}

func NewService(dir string, log logger.Logger) *Service {
	return &Service{
		dir:    dir,
		logger: log,
		offers: make(map[string]*Offer),
	}
}

// LoadAll reads every offer file once. Later calls are no-ops. A directory
// that cannot be read is returned as *LoadError; individual bad files are
// logged and skipped.
func (s *Service) LoadAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return &LoadError{Path: s.dir, Op: "read offers directory", Err: err}
	}

	var chunks []Chunk
	offers := make(map[string]*Offer)
	files := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.Contains(name, "package") {
			continue
		}

		path := filepath.Join(s.dir, name)
		offer, err := readOffer(path)
		if err != nil {
			s.logger.Warn("rag", "skipping offer file", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		offer.Source = name
		offer.Destination = tagDestination(base, offer)
		for i := range offer.Hotels {
			offer.Hotels[i].Destination = offer.Destination
		}

		chunks = append(chunks, buildChunks(base, offer)...)
		if offer.Destination != "" {
			offers[offer.Destination] = offer
		}
		files++
	}

	s.chunks = chunks
	s.offers = offers
	s.loaded = true

	s.logger.Info("rag", "offers loaded", map[string]interface{}{
		"dir":          s.dir,
		"files":        files,
		"chunks":       len(chunks),
		"destinations": len(offers),
	})
	return nil
}

func readOffer(path string) (*Offer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var offer Offer
	if err := json.Unmarshal(data, &offer); err != nil {
		return nil, fmt.Errorf("failed to parse offer: %w", err)
	}
	return &offer, nil
}

func tagDestination(base string, offer *Offer) string {
	haystack := strings.ToLower(strings.Join([]string{base, offer.Title.EN, offer.Title.AR, offer.Location}, " "))
	for _, tag := range destinationTags {
		for _, p := range tag.patterns {
			if strings.Contains(haystack, p) {
				return tag.code
			}
		}
	}
	return ""
}

// buildChunks derives one chunk per section and language that has content.
func buildChunks(base string, offer *Offer) []Chunk {
	var chunks []Chunk

	for _, lang := range []string{LangEnglish, LangArabic} {
		add := func(category, text string, meta *ChunkMetadata) {
			if strings.TrimSpace(text) == "" {
				return
			}
			if meta == nil {
				meta = &ChunkMetadata{}
			}
			meta.Category = category
			c := Chunk{
				ID:          fmt.Sprintf("%s#%s#%s", base, category, lang),
				Source:      offer.Source,
				Destination: offer.Destination,
				Section:     category,
				Lang:        lang,
				Title:       offer.Title.Or(lang),
				Text:        text,
				Metadata:    meta,
			}
			c.keywords = keywords(c.Title + " " + c.Text)
			chunks = append(chunks, c)
		}

		if title := offer.Title.Get(lang); title != "" {
			text := title
			if offer.Location != "" {
				text += "\n" + offer.Location
			}
			add(CategoryOverview, text, nil)
		}
		add(CategoryValidity, offer.Validity.Get(lang), nil)

		if len(offer.Hotels) > 0 {
			names := make([]string, 0, len(offer.Hotels))
			lines := make([]string, 0, len(offer.Hotels))
			for _, h := range offer.Hotels {
				names = append(names, h.Name)
				lines = append(lines, hotelLine(h, lang))
			}
			add(CategoryHotels, strings.Join(lines, "\n"), &ChunkMetadata{Hotels: names})
		}

		add(CategoryIncludes, strings.Join(offer.PriceIncludes.Get(lang), "\n"), nil)
		add(CategoryExcludes, strings.Join(offer.PriceExcludes.Get(lang), "\n"), nil)
		add(CategoryVisa, offer.Visa.Get(lang), nil)

		var tourNames, tourLines []string
		for _, t := range offer.OptionalTours {
			name := t.Name.Get(lang)
			if name == "" {
				continue
			}
			tourNames = append(tourNames, name)
			line := name
			if t.Price > 0 {
				line += " - " + formatPrice(t.Price, t.Currency)
			}
			tourLines = append(tourLines, line)
		}
		add(CategoryTours, strings.Join(tourLines, "\n"), &ChunkMetadata{Tours: tourNames})

		add(CategoryNotes, strings.Join(offer.Notes.Get(lang), "\n"), nil)
	}
	return chunks
}

func hotelLine(h Hotel, lang string) string {
	var b strings.Builder
	b.WriteString(h.DisplayName(lang))
	if lang == LangArabic {
		if h.Stars > 0 {
			fmt.Fprintf(&b, " (%d نجوم)", h.Stars)
		}
		if h.Price > 0 {
			fmt.Fprintf(&b, " - %s للفرد", formatPrice(h.Price, h.Currency))
		}
	} else {
		if h.Stars > 0 {
			fmt.Fprintf(&b, " (%d stars)", h.Stars)
		}
		if h.Price > 0 {
			fmt.Fprintf(&b, " - %s per person", formatPrice(h.Price, h.Currency))
		}
	}
	if h.MealPlan != "" {
		b.WriteString(", " + nlu.MealPlanName(h.MealPlan, lang))
	}
	if len(h.Amenities) > 0 {
		b.WriteString(" | " + strings.Join(h.Amenities, ", "))
	}
	return b.String()
}

func formatPrice(price float64, currency string) string {
	s := strconv.FormatFloat(price, 'f', -1, 64)
	if currency != "" {
		s += " " + currency
	}
	return s
}

// Chunks returns a copy of the loaded chunk list.
func (s *Service) Chunks() ([]Chunk, error) {
	if err := s.LoadAll(); err != nil {
		return nil, err
	}
	return append([]Chunk(nil), s.chunks...), nil
}

// Offer returns the offer tagged with destination, if any.
func (s *Service) Offer(destination string) (*Offer, bool, error) {
	if err := s.LoadAll(); err != nil {
		return nil, false, err
	}
	offer, ok := s.offers[destination]
	return offer, ok, nil
}

// Destinations lists the destination codes that have an offer, sorted.
func (s *Service) Destinations() ([]string, error) {
	if err := s.LoadAll(); err != nil {
		return nil, err
	}
	dests := make([]string, 0, len(s.offers))
	for d := range s.offers {
		dests = append(dests, d)
	}
	sort.Strings(dests)
	return dests, nil
}
