package rag

import (
	"sort"
	"strings"
)

const maxRecommendations = 5

var destinationNames = map[string]map[string]string{
	"sharm_el_sheikh": {LangEnglish: "Sharm El Sheikh", LangArabic: "شرم الشيخ"},
	"hurghada":        {LangEnglish: "Hurghada", LangArabic: "الغردقة"},
	"dahab":           {LangEnglish: "Dahab", LangArabic: "دهب"},
	"ain_sokhna":      {LangEnglish: "Ain Sokhna", LangArabic: "العين السخنة"},
	"sahl_hasheesh":   {LangEnglish: "Sahl Hasheesh", LangArabic: "سهل حشيش"},
	"istanbul":        {LangEnglish: "Istanbul", LangArabic: "اسطنبول"},
	"bali":            {LangEnglish: "Bali", LangArabic: "بالي"},
	"beirut":          {LangEnglish: "Beirut", LangArabic: "بيروت"},
}

// DestinationName returns the display name of a destination code. Unknown
// codes are returned unchanged.
func DestinationName(code, lang string) string {
	byLang, ok := destinationNames[code]
	if !ok {
		return code
	}
	if name, ok := byLang[lang]; ok {
		return name
	}
	return byLang[LangEnglish]
}

// GetDestinationInfo returns the chunks of one destination, optionally
// narrowed to a category ("" or "all" for every category). Chunks in lang are
// preferred; when none exist every language is returned.
func (s *Service) GetDestinationInfo(destination, infoType, lang string) ([]Chunk, error) {
	if err := s.LoadAll(); err != nil {
		return nil, err
	}

	var matched, inLang []Chunk
	for _, c := range s.chunks {
		if c.Destination != destination {
			continue
		}
		if infoType != "" && infoType != "all" && c.Section != infoType {
			continue
		}
		matched = append(matched, c)
		if c.Lang == lang {
			inLang = append(inLang, c)
		}
	}

	if len(inLang) > 0 {
		return inLang, nil
	}
	return matched, nil
}

// SearchHotels returns the hotels of a destination's offer that pass filters.
func (s *Service) SearchHotels(destination string, filters HotelFilters) ([]Hotel, error) {
	offer, ok, err := s.Offer(destination)
	if err != nil {
		return nil, err
	}
	hotels := []Hotel{}
	if !ok {
		return hotels, nil
	}

	for _, h := range offer.Hotels {
		if filters.match(h) {
			hotels = append(hotels, h)
		}
	}
	return hotels, nil
}

func (f HotelFilters) match(h Hotel) bool {
	if f.Stars > 0 && h.Stars != f.Stars {
		return false
	}
	if f.MinPrice > 0 && h.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && h.Price > f.MaxPrice {
		return false
	}
	if f.MealPlan != "" && !strings.EqualFold(h.MealPlan, f.MealPlan) {
		return false
	}
	return hasAmenities(h, f.Amenities)
}

func hasAmenities(h Hotel, wanted []string) bool {
	for _, a := range wanted {
		found := false
		for _, have := range h.Amenities {
			if strings.EqualFold(have, a) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CompareHotels finds each named hotel, in the order given. Names match
// case-insensitively as substrings of the English or Arabic hotel name. An
// empty destination searches every offer.
func (s *Service) CompareHotels(names []string, destination string) ([]Hotel, error) {
	if err := s.LoadAll(); err != nil {
		return nil, err
	}

	var pool []Hotel
	for _, dest := range s.sortedOfferKeys() {
		if destination != "" && dest != destination {
			continue
		}
		pool = append(pool, s.offers[dest].Hotels...)
	}

	hotels := []Hotel{}
	for _, name := range names {
		needle := strings.ToLower(strings.TrimSpace(name))
		if needle == "" {
			continue
		}
		for _, h := range pool {
			if strings.Contains(strings.ToLower(h.Name), needle) || (h.NameAR != "" && strings.Contains(h.NameAR, name)) {
				hotels = append(hotels, h)
				break
			}
		}
	}
	return hotels, nil
}

// GetRecommendations returns up to five hotels matching prefs, best rated
// first and cheaper first among equal ratings.
func (s *Service) GetRecommendations(prefs Preferences, lang string) ([]Recommendation, error) {
	if err := s.LoadAll(); err != nil {
		return nil, err
	}

	recs := []Recommendation{}
	for _, dest := range s.sortedOfferKeys() {
		if prefs.Destination != "" && dest != prefs.Destination {
			continue
		}
		offer := s.offers[dest]
		for _, h := range offer.Hotels {
			if prefs.Stars > 0 && h.Stars < prefs.Stars {
				continue
			}
			if prefs.MaxPrice > 0 && h.Price > prefs.MaxPrice {
				continue
			}
			if prefs.MealPlan != "" && !strings.EqualFold(h.MealPlan, prefs.MealPlan) {
				continue
			}
			if !hasAmenities(h, prefs.Amenities) {
				continue
			}
			recs = append(recs, Recommendation{
				Hotel:       h,
				Destination: dest,
				Title:       offer.Title.Or(lang),
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Hotel.Stars != recs[j].Hotel.Stars {
			return recs[i].Hotel.Stars > recs[j].Hotel.Stars
		}
		return recs[i].Hotel.Price < recs[j].Hotel.Price
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs, nil
}

func (s *Service) sortedOfferKeys() []string {
	keys := make([]string, 0, len(s.offers))
	for k := range s.offers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
