package nlu

import (
	"regexp"
	"strconv"
	"strings"
)

type alias struct {
	code     string
	patterns []string
}

// Destination gazetteer. Table order decides ties: the first entry with a
// matching pattern wins.
var destinationTable = []alias{
	{"sharm_el_sheikh", []string{"sharm el sheikh", "sharm", "شرم الشيخ", "شرم"}},
	{"hurghada", []string{"hurghada", "الغردقة", "الغردقه", "غردقة", "غردقه"}},
	{"dahab", []string{"dahab", "دهب"}},
	{"ain_sokhna", []string{"ain sokhna", "sokhna", "العين السخنة", "السخنة", "السخنه"}},
	{"sahl_hasheesh", []string{"sahl hasheesh", "hasheesh", "سهل حشيش"}},
	{"istanbul", []string{"istanbul", "turkey", "اسطنبول", "إسطنبول", "تركيا"}},
	{"bali", []string{"bali", "بالي"}},
	{"beirut", []string{"beirut", "lebanon", "بيروت", "لبنان"}},
}

var hotelTable = []alias{
	{"hilton", []string{"hilton", "هيلتون"}},
	{"sheraton", []string{"sheraton", "شيراتون"}},
	{"marriott", []string{"marriott", "ماريوت"}},
	{"rixos", []string{"rixos", "ريكسوس"}},
	{"steigenberger", []string{"steigenberger", "شتيجنبرجر", "ستايجنبرجر"}},
	{"jaz", []string{"jaz", "جاز"}},
	{"sunrise", []string{"sunrise", "صن رايز"}},
	{"albatros", []string{"albatros", "الباتروس"}},
	{"movenpick", []string{"movenpick", "mövenpick", "موفنبيك"}},
	{"four seasons", []string{"four seasons", "فور سيزونز"}},
	{"kempinski", []string{"kempinski", "كمبينسكي"}},
	{"hyatt", []string{"hyatt", "هايات"}},
	{"savoy", []string{"savoy", "سافوي"}},
	{"baron", []string{"baron", "بارون"}},
	{"titanic", []string{"titanic", "تيتانيك"}},
	{"iberotel", []string{"iberotel", "ايبروتيل"}},
	{"radisson", []string{"radisson", "راديسون"}},
	{"swissotel", []string{"swissotel", "سويس اوتيل"}},
}

var mealPlanTable = []alias{
	{"AI", []string{"all inclusive", "all-inclusive", "الكل شامل", "شامل كل", "شامل الوجبات"}},
	{"FB", []string{"full board", "فول بورد", "إقامة كاملة", "اقامة كاملة"}},
	{"HB", []string{"half board", "هاف بورد", "نصف إقامة", "نص اقامة"}},
	{"BB", []string{"bed and breakfast", "breakfast", "إفطار", "افطار", "فطار"}},
}

var roomTypeTable = []alias{
	{"single", []string{"single", "سنجل", "فردية", "مفردة"}},
	{"double", []string{"double", "دبل", "مزدوجة"}},
	{"triple", []string{"triple", "تريبل", "ثلاثية"}},
	{"family", []string{"family room", "غرفة عائلية", "عائلية"}},
}

var amenityTable = []alias{
	{"pool", []string{"pool", "حمام سباحة", "مسبح", "بيسين"}},
	{"beach", []string{"beach", "شاطئ", "شاطيء", "بحر"}},
	{"spa", []string{"spa", "massage", "سبا", "مساج"}},
	{"gym", []string{"gym", "fitness", "جيم", "صالة رياضية"}},
	{"wifi", []string{"wifi", "wi-fi", "internet", "واي فاي", "انترنت", "إنترنت"}},
	{"kids", []string{"kids", "children", "aqua park", "aquapark", "أطفال", "اطفال", "أكوا بارك", "اكوا بارك"}},
	{"restaurant", []string{"restaurant", "مطعم", "مطاعم"}},
	{"parking", []string{"parking", "جراج", "موقف سيارات", "باركينج"}},
}

var monthTable = []alias{
	{"january", []string{"january", "يناير"}},
	{"february", []string{"february", "فبراير"}},
	{"march", []string{"march", "مارس"}},
	{"april", []string{"april", "أبريل", "ابريل"}},
	{"may", []string{"may", "مايو"}},
	{"june", []string{"june", "يونيو"}},
	{"july", []string{"july", "يوليو"}},
	{"august", []string{"august", "أغسطس", "اغسطس"}},
	{"september", []string{"september", "سبتمبر"}},
	{"october", []string{"october", "أكتوبر", "اكتوبر"}},
	{"november", []string{"november", "نوفمبر"}},
	{"december", []string{"december", "ديسمبر"}},
}

const number = `(\d[\d,]*(?:\.\d+)?)`

// priceNumber needs at least three characters so "15-20 november" stays a date span.
const priceNumber = `(\d[\d,]{2,}(?:\.\d+)?)`

var (
	starsPattern = regexp.MustCompile(`(\d+)\s*(?:نجوم|نجمات|نجمة|stars?|\*|★)`)

	priceRangePattern  = regexp.MustCompile(`(?:from|between|من|بين)\s*` + priceNumber + `\s*(?:to|and|-|إلى|الى|لحد|و)\s*` + priceNumber)
	priceMaxPattern    = regexp.MustCompile(`(?:under|less than|below|up to|maximum|max|أقل من|اقل من|تحت|في حدود|لحد)\s*` + number)
	priceMinPattern    = regexp.MustCompile(`(?:more than|above|over|at least|أكثر من|اكثر من|فوق|على الأقل)\s*` + number)
	priceApproxPattern = regexp.MustCompile(`(?:around|about|approximately|roughly|حوالي|حوالى|تقريبا|تقريباً)\s*` + number)

	numericDatePattern = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}\b`)

	travelersPattern = regexp.MustCompile(`(\d+)\s*(?:persons?|people|pax|travell?ers?|adults?|guests?|أشخاص|اشخاص|شخص|أفراد|افراد|فرد|مسافرين|مسافر)`)
	familyOfPattern  = regexp.MustCompile(`(?:family of|عائلة من|عيلة من|أسرة من|اسرة من)\s*(\d+)`)

	budgetPattern = regexp.MustCompile(`(?:budget(?:\s+(?:of|is))?|ميزانيتي|ميزانية)\s*(?:هي|around|about|حوالي)?\s*:?\s*` + number)

	comparisonPattern = regexp.MustCompile(`\b(?:vs\.?|versus|compare|or)\b|ولا| و |مقارنة|قارن| أو | او `)
)

var travelerKeywords = []struct {
	count    int
	keywords []string
}{
	{2, []string{"couple", "اثنين", "شخصين", "اتنين"}},
	{4, []string{"family", "عائلة", "عيلة", "أسرة", "اسرة"}},
	{6, []string{"group", "مجموعة", "جروب"}},
}

// ExtractEntities runs every field extractor over a lowercased copy of
// message. Fields missing from the message are backfilled from ctx; context
// never overrides an explicit extraction.
func ExtractEntities(message string, ctx *ConversationContext) Entities {
	text := strings.ToLower(message)

	e := Entities{
		Destination: ExtractDestination(text),
		Stars:       extractStars(text),
		PriceRange:  extractPriceRange(text),
		Dates:       extractDates(text),
		Travelers:   extractTravelers(text),
		Budget:      extractBudget(text),
		MealPlan:    firstMatch(text, mealPlanTable),
		RoomType:    firstMatch(text, roomTypeTable),
		Amenities:   allMatches(text, amenityTable),
		Language:    DetectLanguage(message),
	}
	e.HotelName, e.HotelNames = extractHotels(text)

	if ctx != nil {
		if e.Destination == "" && ctx.Destination != "" {
			e.Destination = ctx.Destination
		}
		if e.HotelName == "" && ctx.SelectedHotel != "" {
			e.HotelName = ctx.SelectedHotel
		}
	}

	return e
}

// ExtractDestination returns the gazetteer code of the first destination
// mentioned in text, or "".
func ExtractDestination(text string) string {
	return firstMatch(strings.ToLower(text), destinationTable)
}

func extractHotels(text string) (string, []string) {
	found := allMatches(text, hotelTable)
	if len(found) == 0 {
		return "", nil
	}
	if len(found) >= 2 && comparisonPattern.MatchString(text) {
		return found[0], found[:2]
	}
	return found[0], found
}

func extractStars(text string) int {
	m := starsPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	stars, err := strconv.Atoi(m[1])
	if err != nil || stars < 1 || stars > 5 {
		return 0
	}
	return stars
}

func extractPriceRange(text string) *PriceRange {
	if m := priceRangePattern.FindStringSubmatch(text); m != nil {
		return &PriceRange{Min: floatPtr(parseNumber(m[1])), Max: floatPtr(parseNumber(m[2]))}
	}
	if m := priceMaxPattern.FindStringSubmatch(text); m != nil {
		return &PriceRange{Max: floatPtr(parseNumber(m[1]))}
	}
	if m := priceMinPattern.FindStringSubmatch(text); m != nil {
		return &PriceRange{Min: floatPtr(parseNumber(m[1]))}
	}
	if m := priceApproxPattern.FindStringSubmatch(text); m != nil {
		v := parseNumber(m[1])
		return &PriceRange{Min: floatPtr(v * 0.8), Max: floatPtr(v * 1.2)}
	}
	return nil
}

// extractDates takes the first two DD/MM tokens as start and end. A month
// name, when present, independently overwrites start.
func extractDates(text string) *DateRange {
	var dates *DateRange

	if found := numericDatePattern.FindAllString(text, 2); len(found) > 0 {
		dates = &DateRange{Start: found[0]}
		if len(found) > 1 {
			dates.End = found[1]
		}
	}

	if month := firstMatch(text, monthTable); month != "" {
		if dates == nil {
			dates = &DateRange{}
		}
		dates.Start = month
	}

	return dates
}

func extractTravelers(text string) int {
	if m := travelersPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if m := familyOfPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	for _, kw := range travelerKeywords {
		if containsAny(text, kw.keywords) {
			return kw.count
		}
	}
	return 0
}

func extractBudget(text string) float64 {
	if m := budgetPattern.FindStringSubmatch(text); m != nil {
		return parseNumber(m[1])
	}
	return 0
}

func firstMatch(text string, table []alias) string {
	for _, a := range table {
		if containsAny(text, a.patterns) {
			return a.code
		}
	}
	return ""
}

func allMatches(text string, table []alias) []string {
	var found []string
	for _, a := range table {
		if containsAny(text, a.patterns) {
			found = append(found, a.code)
		}
	}
	return found
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}
