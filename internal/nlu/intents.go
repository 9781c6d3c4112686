package nlu

import "regexp"

// IntentType is one of the fixed catalog kinds.
type IntentType string

const (
	IntentGreeting            IntentType = "greeting"
	IntentDestinationInquiry  IntentType = "destination_inquiry"
	IntentHotelSearch         IntentType = "hotel_search"
	IntentHotelComparison     IntentType = "hotel_comparison"
	IntentPriceInquiry        IntentType = "price_inquiry"
	IntentBookingModification IntentType = "booking_modification"
	IntentBookingRequest      IntentType = "booking_request"
	IntentRecommendation      IntentType = "recommendation_request"
	IntentAmenitiesInquiry    IntentType = "amenities_inquiry"
	IntentGeneralQuestion     IntentType = "general_question"
	IntentSupportRequest      IntentType = "support_request"
	IntentUnknown             IntentType = "unknown"
)

// Rule scores one intent. Boost receives the extracted entities and the
// (possibly nil) conversation context.
type Rule struct {
	Type             IntentType
	Patterns         []*regexp.Regexp
	RequiredEntities []string
	Boost            func(e Entities, ctx *ConversationContext) float64
}

// Catalog is evaluated in order; on equal scores the earlier rule wins.
var Catalog = []Rule{
	{
		Type: IntentGreeting,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*(hi|hello|hey|good (morning|evening|afternoon))\b`),
			regexp.MustCompile(`مرحبا|أهلا|اهلا|السلام عليكم|صباح الخير|مساء الخير|هاي`),
		},
	},
	{
		Type: IntentDestinationInquiry,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(destinations?|where (can|should) (i|we) (go|travel)|places to visit)\b`),
			regexp.MustCompile(`وجهات|وجهة|أماكن|اماكن|فين نسافر|فين اسافر|انهي بلد`),
		},
		Boost: func(e Entities, _ *ConversationContext) float64 {
			if e.Destination != "" {
				return 0.2
			}
			return 0
		},
	},
	{
		Type: IntentHotelSearch,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(hotels?|resorts?|accommodation|places to stay)\b`),
			regexp.MustCompile(`فندق|فنادق|منتجع|اوتيل|أوتيل`),
		},
		RequiredEntities: []string{EntityDestination},
	},
	{
		Type: IntentHotelComparison,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(compare|comparison|vs\.?|versus|difference between)\b`),
			regexp.MustCompile(`قارن|مقارنة|الفرق بين|ايهما|أيهما`),
		},
		RequiredEntities: []string{EntityHotelNames},
	},
	{
		Type: IntentPriceInquiry,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(price|prices|cost|rates?|how much)\b`),
			regexp.MustCompile(`سعر|أسعار|اسعار|تكلفة|التكلفة`),
			regexp.MustCompile(`كام|بكام|بكم`),
		},
		Boost: func(_ Entities, ctx *ConversationContext) float64 {
			if ctx != nil && ctx.SelectedHotel != "" {
				return 0.3
			}
			return 0
		},
	},
	{
		Type: IntentBookingModification,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(modify|change|cancel|update|reschedule)\b.*\b(booking|reservation)\b`),
			regexp.MustCompile(`تعديل|تغيير|إلغاء|الغاء`),
			regexp.MustCompile(`(تعديل|تغيير|إلغاء|الغاء)\s*(ال)?حجز`),
		},
	},
	{
		Type: IntentBookingRequest,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(book|booking|reserve|reservation)\b`),
			regexp.MustCompile(`احجز|أحجز|حجز|نحجز`),
		},
		Boost: func(_ Entities, ctx *ConversationContext) float64 {
			if ctx != nil && ctx.SelectedHotel != "" {
				return 0.2
			}
			return 0
		},
	},
	{
		Type: IntentRecommendation,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(recommend|recommendation|suggest|best|top rated)\b`),
			regexp.MustCompile(`رشح|ترشيح|اقترح|اقتراح|انصحني|تنصحني|أفضل|افضل`),
		},
	},
	{
		Type: IntentAmenitiesInquiry,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(amenities|facilities|services|pool|spa|gym|wifi|beach)\b`),
			regexp.MustCompile(`مرافق|خدمات|حمام سباحة|مسبح|سبا|جيم|واي فاي|شاطئ`),
		},
		Boost: func(e Entities, _ *ConversationContext) float64 {
			if len(e.Amenities) > 0 {
				return 0.2
			}
			return 0
		},
	},
	{
		Type: IntentGeneralQuestion,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(visa|weather|payment|pay|installments?|kids|children|cancellation policy|documents)\b`),
			regexp.MustCompile(`فيزا|تأشيرة|تاشيرة|الطقس|الجو|الدفع|تقسيط|أطفال|اطفال|سياسة الإلغاء`),
		},
	},
	{
		Type: IntentSupportRequest,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(help|support|agent|human|complaint|problem|call me|contact)\b`),
			regexp.MustCompile(`مساعدة|دعم|مشكلة|شكوى|كلمني|تواصل|موظف|خدمة العملاء`),
		},
	},
}

// Suggestions are follow-up prompts shown with each classified intent.
var Suggestions = map[IntentType]map[string][]string{
	IntentGreeting: {
		LangEnglish: {"Show me destinations", "Hotels in Hurghada", "What offers do you have?"},
		LangArabic:  {"اعرض الوجهات", "فنادق الغردقة", "إيه العروض المتاحة؟"},
	},
	IntentDestinationInquiry: {
		LangEnglish: {"Hotels in Sharm El Sheikh", "Istanbul offers", "Visa requirements"},
		LangArabic:  {"فنادق شرم الشيخ", "عروض اسطنبول", "متطلبات الفيزا"},
	},
	IntentHotelSearch: {
		LangEnglish: {"Show 5 star hotels", "Under 5000 per person", "All inclusive only"},
		LangArabic:  {"اعرض فنادق 5 نجوم", "أقل من 5000 للفرد", "الكل شامل فقط"},
	},
	IntentHotelComparison: {
		LangEnglish: {"Which one is cheaper?", "Compare amenities", "Book the first one"},
		LangArabic:  {"أيهما أرخص؟", "قارن المرافق", "احجز الأول"},
	},
	IntentPriceInquiry: {
		LangEnglish: {"What does the price include?", "Cheapest option", "Book now"},
		LangArabic:  {"السعر يشمل إيه؟", "أرخص اختيار", "احجز الآن"},
	},
	IntentBookingModification: {
		LangEnglish: {"Change my dates", "Cancel my booking", "Talk to support"},
		LangArabic:  {"تغيير المواعيد", "إلغاء الحجز", "التواصل مع الدعم"},
	},
	IntentBookingRequest: {
		LangEnglish: {"Choose meal plan", "Choose room type", "Send my contact details"},
		LangArabic:  {"اختيار نظام الوجبات", "اختيار نوع الغرفة", "إرسال بيانات التواصل"},
	},
	IntentRecommendation: {
		LangEnglish: {"Best for families", "Best beach hotels", "Best value"},
		LangArabic:  {"الأفضل للعائلات", "أفضل فنادق على البحر", "أفضل قيمة"},
	},
	IntentAmenitiesInquiry: {
		LangEnglish: {"Hotels with aqua park", "Hotels with spa", "Private beach"},
		LangArabic:  {"فنادق بها أكوا بارك", "فنادق بها سبا", "شاطئ خاص"},
	},
	IntentGeneralQuestion: {
		LangEnglish: {"Visa requirements", "Payment methods", "Cancellation policy"},
		LangArabic:  {"متطلبات الفيزا", "طرق الدفع", "سياسة الإلغاء"},
	},
	IntentSupportRequest: {
		LangEnglish: {"Call me back", "WhatsApp us", "Email support"},
		LangArabic:  {"اتصلوا بي", "تواصل واتساب", "راسلنا بالبريد"},
	},
	IntentUnknown: {
		LangEnglish: {"Show me destinations", "Hotel prices", "Talk to an agent"},
		LangArabic:  {"اعرض الوجهات", "أسعار الفنادق", "كلم موظف"},
	},
}

// SuggestionsFor looks up the table by intent and language, falling back to
// the unknown entry and then to English.
func SuggestionsFor(t IntentType, lang string) []string {
	byLang, ok := Suggestions[t]
	if !ok {
		byLang = Suggestions[IntentUnknown]
	}
	if s, ok := byLang[lang]; ok {
		return s
	}
	return byLang[LangEnglish]
}
