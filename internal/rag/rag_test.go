package rag

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/travelbuddy-intent/internal/logger"
)

const hurghadaOffer = `{
  "title": {"en": "Hurghada Summer Offer", "ar": "عرض الغردقة الصيفي"},
  "location": "Hurghada, Egypt",
  "validity": {"en": "Valid until 30 September", "ar": "ساري حتى 30 سبتمبر"},
  "hotels": [
    {"name": "Steigenberger Aqua Magic", "name_ar": "شتيجنبرجر أكوا ماجيك", "stars": 5, "price": 14000, "currency": "EGP", "meal_plan": "AI", "room_types": ["double", "family"], "amenities": ["pool", "beach", "kids"]},
    {"name": "Jaz Aquamarine", "name_ar": "جاز أكوامارين", "stars": 5, "price": 12500, "currency": "EGP", "meal_plan": "AI", "amenities": ["pool", "beach"]},
    {"name": "Sunrise Holidays", "stars": 4, "price": 9000, "currency": "EGP", "meal_plan": "HB", "amenities": ["pool"]}
  ],
  "price_includes": {"en": ["Accommodation", "Bus transfers"], "ar": ["الإقامة", "الانتقالات بالأتوبيس"]},
  "price_excludes": {"en": ["Personal expenses"]},
  "optional_tours": [{"name": {"en": "Giftun Island", "ar": "جزيرة الجفتون"}, "price": 25, "currency": "USD"}]
}`

const istanbulOffer = `{
  "title": {"en": "Istanbul Winter Escape", "ar": "اسطنبول الشتاء"},
  "location": "Istanbul, Turkey",
  "hotels": [
    {"name": "Rixos Pera", "stars": 5, "price": 30000, "currency": "EGP", "meal_plan": "BB"},
    {"name": "Hilton Bomonti", "name_ar": "هيلتون بومونتي", "stars": 5, "price": 30000, "currency": "EGP", "meal_plan": "BB"},
    {"name": "Ramada Old City", "stars": 4, "price": 18000, "currency": "EGP", "meal_plan": "BB"}
  ],
  "visa": {"en": "Turkish e-visa required before travel", "ar": "مطلوب فيزا إلكترونية قبل السفر"}
}`

func writeOffers(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"hurghada_offer.json":  hurghadaOffer,
		"istanbul-winter.json": istanbulOffer,
		"broken.json":          `{"title": `,
		"package.json":         `{"name": "offers"}`,
		"readme.txt":           "not an offer",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func newTestService(t *testing.T) *Service {
	return NewService(writeOffers(t), logger.NewNop())
}

func newChunk(id, lang, destination, category, title, text string) Chunk {
	c := Chunk{
		ID:          id,
		Destination: destination,
		Section:     category,
		Lang:        lang,
		Title:       title,
		Text:        text,
		Metadata:    &ChunkMetadata{Category: category},
	}
	c.keywords = keywords(c.Title + " " + c.Text)
	return c
}

func serviceWithChunks(chunks ...Chunk) *Service {
	return &Service{
		logger: logger.NewNop(),
		loaded: true,
		chunks: chunks,
		offers: map[string]*Offer{},
	}
}

func TestLoadAllIsIdempotent(t *testing.T) {
	dir := writeOffers(t)
	s := NewService(dir, logger.NewNop())

	require.NoError(t, s.LoadAll())
	first, err := s.Chunks()
	require.NoError(t, err)
	dests, err := s.Destinations()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bali.json"), []byte(`{"title": {"en": "Bali"}}`), 0o644))
	require.NoError(t, s.LoadAll())

	second, err := s.Chunks()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	again, err := s.Destinations()
	require.NoError(t, err)
	assert.Equal(t, dests, again)
}

func TestLoadAllBuildsChunksPerSectionAndLanguage(t *testing.T) {
	s := newTestService(t)

	chunks, err := s.Chunks()
	require.NoError(t, err)
	assert.Len(t, chunks, 17)

	ids := map[string]Chunk{}
	for _, c := range chunks {
		ids[c.ID] = c
	}

	hotels, ok := ids["hurghada_offer#hotels#en"]
	require.True(t, ok)
	assert.Equal(t, "hurghada", hotels.Destination)
	assert.Equal(t, "Hurghada Summer Offer", hotels.Title)
	assert.Equal(t, []string{"Steigenberger Aqua Magic", "Jaz Aquamarine", "Sunrise Holidays"}, hotels.Metadata.Hotels)
	assert.Contains(t, hotels.Text, "Jaz Aquamarine (5 stars) - 12500 EGP per person, All Inclusive")

	arHotels := ids["hurghada_offer#hotels#ar"]
	assert.Contains(t, arHotels.Text, "جاز أكوامارين (5 نجوم)")

	_, ok = ids["hurghada_offer#excludes#ar"]
	assert.False(t, ok, "no arabic excludes in source")
	_, ok = ids["hurghada_offer#visa#en"]
	assert.False(t, ok, "no visa in source")

	tours := ids["hurghada_offer#tours#ar"]
	assert.Equal(t, []string{"جزيرة الجفتون"}, tours.Metadata.Tours)

	assert.Equal(t, "istanbul", ids["istanbul-winter#visa#en"].Destination)
}

func TestLoadAllUnreadableDirectory(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "missing"), logger.NewNop())

	err := s.LoadAll()
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = s.Retrieve("hotels", RetrieveOptions{})
	assert.Error(t, err)
}

func TestRetrieveLiteralMatchRanksFirst(t *testing.T) {
	s := serviceWithChunks(
		newChunk("other", "en", "", "", "", "beach beach"),
		newChunk("literal", "ar", "", "", "", "hotels with a private beach"),
	)

	res, err := s.Retrieve("Private Beach", RetrieveOptions{Lang: "en"})
	require.NoError(t, err)
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, "literal", res.Chunks[0].ID)
	assert.Equal(t, 14, res.Chunks[0].Score)
	assert.Equal(t, 5, res.Chunks[1].Score)
}

func TestRetrieveScoringSignals(t *testing.T) {
	s := serviceWithChunks(newChunk("h", "en", "hurghada", CategoryHotels, "Hurghada Summer", "Hilton Hurghada (5 stars)"))

	res, err := s.Retrieve("hotels in Hurghada", RetrieveOptions{Lang: "en"})
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)
	// keyword 2 + category 5 + language 3 + destination 4
	assert.Equal(t, 14, res.Chunks[0].Score)

	res, err = s.Retrieve("hotels in Hurghada", RetrieveOptions{Lang: "fr"})
	require.NoError(t, err)
	assert.Equal(t, 11, res.Chunks[0].Score)
}

func TestRetrieveTurkeyMatchesIstanbul(t *testing.T) {
	s := serviceWithChunks(newChunk("i", "en", "istanbul", CategoryVisa, "", "e-visa"))

	res, err := s.Retrieve("turkey", RetrieveOptions{})
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, 4, res.Chunks[0].Score)
}

func TestRetrieveEdgeCases(t *testing.T) {
	s := serviceWithChunks(
		newChunk("a", "en", "", "", "", "alpha"),
		newChunk("b", "en", "", "", "", "alpha"),
	)

	t.Run("empty query", func(t *testing.T) {
		res, err := s.Retrieve("   ", RetrieveOptions{Lang: "en"})
		require.NoError(t, err)
		assert.Empty(t, res.Chunks)
	})

	t.Run("zero scores are excluded", func(t *testing.T) {
		res, err := s.Retrieve("zzz", RetrieveOptions{})
		require.NoError(t, err)
		assert.Empty(t, res.Chunks)
	})

	t.Run("ties keep load order", func(t *testing.T) {
		res, err := s.Retrieve("alpha", RetrieveOptions{})
		require.NoError(t, err)
		require.Len(t, res.Chunks, 2)
		assert.Equal(t, "a", res.Chunks[0].ID)
		assert.Equal(t, "b", res.Chunks[1].ID)
	})

	t.Run("limit", func(t *testing.T) {
		res, err := s.Retrieve("alpha", RetrieveOptions{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, res.Chunks, 1)
	})
}

func TestRetrieveDefaultLimit(t *testing.T) {
	s := newTestService(t)

	res, err := s.Retrieve("hurghada", RetrieveOptions{Lang: "en"})
	require.NoError(t, err)
	assert.Len(t, res.Chunks, DefaultLimit)
	for _, c := range res.Chunks {
		assert.Equal(t, "hurghada", c.Destination)
	}
}

func TestSmartSearchCorrectsArabicSpelling(t *testing.T) {
	s := newTestService(t)

	res, err := s.SmartSearch("فنادق الغردقه", RetrieveOptions{Lang: "ar", Limit: 3})
	require.NoError(t, err)
	require.NotEmpty(t, res.Chunks)
	assert.Equal(t, "فنادق الغردقه", res.Query)
	assert.Equal(t, "hurghada_offer#hotels#ar", res.Chunks[0].ID)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "عروض sharm_el_sheikh", NormalizeQuery("عروض شرم الشيخ"))
	assert.Equal(t, "hurghada", NormalizeQuery("غردقه"))
	assert.Equal(t, "رحلة istanbul", NormalizeQuery("رحلة تركيا"))
}

func TestDestinations(t *testing.T) {
	dests, err := newTestService(t).Destinations()
	require.NoError(t, err)
	assert.Equal(t, []string{"hurghada", "istanbul"}, dests)
}

func TestGetDestinationInfo(t *testing.T) {
	s := newTestService(t)

	visa, err := s.GetDestinationInfo("istanbul", CategoryVisa, "ar")
	require.NoError(t, err)
	require.Len(t, visa, 1)
	assert.Equal(t, "ar", visa[0].Lang)

	excludes, err := s.GetDestinationInfo("hurghada", CategoryExcludes, "ar")
	require.NoError(t, err)
	require.Len(t, excludes, 1)
	assert.Equal(t, "en", excludes[0].Lang, "falls back when the language is missing")

	all, err := s.GetDestinationInfo("hurghada", "all", "en")
	require.NoError(t, err)
	assert.Len(t, all, 6)

	none, err := s.GetDestinationInfo("bali", "", "en")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchHotels(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name    string
		dest    string
		filters HotelFilters
		want    []string
	}{
		{"no filters", "hurghada", HotelFilters{}, []string{"Steigenberger Aqua Magic", "Jaz Aquamarine", "Sunrise Holidays"}},
		{"stars", "hurghada", HotelFilters{Stars: 4}, []string{"Sunrise Holidays"}},
		{"max price", "hurghada", HotelFilters{MaxPrice: 13000}, []string{"Jaz Aquamarine", "Sunrise Holidays"}},
		{"min price", "hurghada", HotelFilters{MinPrice: 13000}, []string{"Steigenberger Aqua Magic"}},
		{"meal plan", "hurghada", HotelFilters{MealPlan: "hb"}, []string{"Sunrise Holidays"}},
		{"amenities", "hurghada", HotelFilters{Amenities: []string{"beach", "kids"}}, []string{"Steigenberger Aqua Magic"}},
		{"unknown destination", "paris", HotelFilters{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hotels, err := s.SearchHotels(tt.dest, tt.filters)
			require.NoError(t, err)
			names := []string{}
			for _, h := range hotels {
				names = append(names, h.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCompareHotels(t *testing.T) {
	s := newTestService(t)

	hotels, err := s.CompareHotels([]string{"hilton", "jaz"}, "")
	require.NoError(t, err)
	require.Len(t, hotels, 2)
	assert.Equal(t, "Hilton Bomonti", hotels[0].Name)
	assert.Equal(t, "istanbul", hotels[0].Destination)
	assert.Equal(t, "Jaz Aquamarine", hotels[1].Name)

	scoped, err := s.CompareHotels([]string{"hilton", "jaz"}, "hurghada")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Jaz Aquamarine", scoped[0].Name)
}

func TestGetRecommendations(t *testing.T) {
	s := newTestService(t)

	recs, err := s.GetRecommendations(Preferences{}, "ar")
	require.NoError(t, err)
	require.Len(t, recs, 5)

	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Hotel.Name)
	}
	assert.Equal(t, []string{"Jaz Aquamarine", "Steigenberger Aqua Magic", "Rixos Pera", "Hilton Bomonti", "Sunrise Holidays"}, names)
	assert.Equal(t, "عرض الغردقة الصيفي", recs[0].Title)

	filtered, err := s.GetRecommendations(Preferences{Destination: "istanbul", Stars: 5}, "en")
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "Istanbul Winter Escape", filtered[0].Title)
}

func TestAnswerGeneralQuestion(t *testing.T) {
	s := serviceWithChunks()

	answer, ok := s.AnswerGeneralQuestion("Do I need a VISA?", "en")
	assert.True(t, ok)
	assert.Contains(t, answer, "visa")

	answer, ok = s.AnswerGeneralQuestion("ينفع تقسيط؟", "ar")
	assert.True(t, ok)
	assert.Contains(t, answer, "تقسيط")

	_, ok = s.AnswerGeneralQuestion("tell me a joke", "en")
	assert.False(t, ok)
}

func TestDestinationName(t *testing.T) {
	assert.Equal(t, "Sharm El Sheikh", DestinationName("sharm_el_sheikh", "en"))
	assert.Equal(t, "الغردقة", DestinationName("hurghada", "ar"))
	assert.Equal(t, "Dahab", DestinationName("dahab", "fr"))
	assert.Equal(t, "atlantis", DestinationName("atlantis", "ar"))
}
