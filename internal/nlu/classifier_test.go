package nlu

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avvvet/travelbuddy-intent/internal/logger"
)

func newTestService() *IntentService {
	return NewIntentService(logger.NewNop())
}

func TestAnalyzeArabicPriceInquiry(t *testing.T) {
	intent := newTestService().AnalyzeMessage("كام سعر الفندق؟", nil)

	assert.Equal(t, IntentPriceInquiry, intent.Type)
	assert.GreaterOrEqual(t, intent.Confidence, 0.5)
	assert.Equal(t, SuggestionsFor(IntentPriceInquiry, LangArabic), intent.Suggestions)
}

func TestAnalyzeUnknown(t *testing.T) {
	intent := newTestService().AnalyzeMessage("xyzxyz", nil)

	assert.Equal(t, IntentUnknown, intent.Type)
	assert.Less(t, intent.Confidence, MinConfidence)
	assert.Equal(t, Suggestions[IntentUnknown][LangEnglish], intent.Suggestions)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		ctx     *ConversationContext
		want    IntentType
	}{
		{"english greeting", "Hello there", nil, IntentGreeting},
		{"arabic greeting", "السلام عليكم", nil, IntentGreeting},
		{"hotel search with destination", "hotels in Hurghada", nil, IntentHotelSearch},
		{"comparison", "compare hilton vs sheraton", nil, IntentHotelComparison},
		{"arabic booking modification", "عايز تعديل الحجز", nil, IntentBookingModification},
		{"booking", "I want to book", nil, IntentBookingRequest},
		{"recommendation", "what do you recommend?", nil, IntentRecommendation},
		{"amenities", "does it have a pool?", nil, IntentAmenitiesInquiry},
		{"visa question", "do I need a visa for Istanbul", nil, IntentGeneralQuestion},
		{"support", "I need to talk to an agent", nil, IntentSupportRequest},
		{"destinations", "what destinations do you have", nil, IntentDestinationInquiry},
	}

	svc := newTestService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := svc.AnalyzeMessage(tt.message, tt.ctx)
			assert.Equal(t, tt.want, intent.Type)
		})
	}
}

func TestClassifyScoringArithmetic(t *testing.T) {
	svc := newTestService()

	t.Run("required entities present adds 0.3", func(t *testing.T) {
		e := ExtractEntities("hotels in dahab", nil)
		typ, conf := svc.Classify("hotels in dahab", e, nil)
		assert.Equal(t, IntentHotelSearch, typ)
		assert.InDelta(t, 0.8, conf, 1e-9)
	})

	t.Run("missing required entities subtract 0.2", func(t *testing.T) {
		e := ExtractEntities("hotels", nil)
		typ, conf := svc.Classify("hotels", e, nil)
		assert.Equal(t, IntentHotelSearch, typ)
		assert.InDelta(t, 0.3, conf, 1e-9)
	})

	t.Run("required entity alone is enough for a hotel search", func(t *testing.T) {
		e := ExtractEntities("tell me about Hurghada", nil)
		typ, conf := svc.Classify("tell me about Hurghada", e, nil)
		assert.Equal(t, IntentHotelSearch, typ)
		assert.InDelta(t, 0.3, conf, 1e-9)
	})

	t.Run("context boost", func(t *testing.T) {
		ctx := &ConversationContext{SelectedHotel: "rixos"}
		e := ExtractEntities("price?", ctx)
		typ, conf := svc.Classify("price?", e, ctx)
		assert.Equal(t, IntentPriceInquiry, typ)
		assert.InDelta(t, 0.8, conf, 1e-9)
	})

	t.Run("confidence is capped at 1", func(t *testing.T) {
		ctx := &ConversationContext{SelectedHotel: "rixos"}
		msg := "كام سعر the price"
		typ, conf := svc.Classify(msg, ExtractEntities(msg, ctx), ctx)
		assert.Equal(t, IntentPriceInquiry, typ)
		assert.Equal(t, 1.0, conf)
	})
}

func TestClassifyTieKeepsCatalogOrder(t *testing.T) {
	svc := &IntentService{
		catalog: []Rule{
			{Type: IntentGreeting, Patterns: []*regexp.Regexp{regexp.MustCompile(`same`)}},
			{Type: IntentSupportRequest, Patterns: []*regexp.Regexp{regexp.MustCompile(`same`)}},
		},
		logger: logger.NewNop(),
	}

	typ, conf := svc.Classify("same", Entities{}, nil)

	assert.Equal(t, IntentGreeting, typ)
	assert.Equal(t, 0.5, conf)
}

func TestCatalogCoversEveryKnownIntent(t *testing.T) {
	seen := map[IntentType]bool{}
	for _, rule := range Catalog {
		assert.NotEmpty(t, rule.Patterns, rule.Type)
		assert.False(t, seen[rule.Type], "duplicate rule %s", rule.Type)
		seen[rule.Type] = true
		assert.Len(t, Suggestions[rule.Type][LangEnglish], 3, rule.Type)
		assert.Len(t, Suggestions[rule.Type][LangArabic], 3, rule.Type)
	}
	assert.Len(t, seen, 11)
	assert.False(t, seen[IntentUnknown])
}

func TestSuggestionsFallback(t *testing.T) {
	assert.Equal(t, Suggestions[IntentUnknown][LangArabic], SuggestionsFor("nope", LangArabic))
	assert.Equal(t, Suggestions[IntentGreeting][LangEnglish], SuggestionsFor(IntentGreeting, "fr"))
}

func TestValidateIntent(t *testing.T) {
	svc := newTestService()

	t.Run("comparison needs two hotels", func(t *testing.T) {
		res := svc.ValidateIntent(Intent{Type: IntentHotelComparison, Entities: Entities{HotelNames: []string{"hilton"}}})
		assert.False(t, res.Valid)
		assert.Len(t, res.Errors, 1)
	})

	t.Run("comparison with pair", func(t *testing.T) {
		res := svc.ValidateIntent(Intent{Type: IntentHotelComparison, Entities: Entities{HotelNames: []string{"hilton", "rixos"}}})
		assert.True(t, res.Valid)
	})

	t.Run("booking needs hotel or destination", func(t *testing.T) {
		assert.False(t, svc.ValidateIntent(Intent{Type: IntentBookingRequest}).Valid)
		assert.True(t, svc.ValidateIntent(Intent{Type: IntentBookingRequest, Entities: Entities{Destination: "bali"}}).Valid)
	})

	t.Run("other intents always valid", func(t *testing.T) {
		assert.True(t, svc.ValidateIntent(Intent{Type: IntentGreeting}).Valid)
	})
}
