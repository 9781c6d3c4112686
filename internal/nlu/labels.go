package nlu

var mealPlanNames = map[string]map[string]string{
	"AI": {LangEnglish: "All Inclusive", LangArabic: "الكل شامل"},
	"FB": {LangEnglish: "Full Board", LangArabic: "إقامة كاملة"},
	"HB": {LangEnglish: "Half Board", LangArabic: "نصف إقامة"},
	"BB": {LangEnglish: "Bed & Breakfast", LangArabic: "إقامة وإفطار"},
}

var roomTypeNames = map[string]map[string]string{
	"single": {LangEnglish: "Single room", LangArabic: "غرفة فردية"},
	"double": {LangEnglish: "Double room", LangArabic: "غرفة مزدوجة"},
	"triple": {LangEnglish: "Triple room", LangArabic: "غرفة ثلاثية"},
	"family": {LangEnglish: "Family room", LangArabic: "غرفة عائلية"},
}

// MealPlanName returns the display label for a meal plan code. Unknown codes
// are returned unchanged.
func MealPlanName(code, lang string) string {
	return label(mealPlanNames, code, lang)
}

// RoomTypeName works like MealPlanName for room type codes.
func RoomTypeName(code, lang string) string {
	return label(roomTypeNames, code, lang)
}

func label(table map[string]map[string]string, code, lang string) string {
	byLang, ok := table[code]
	if !ok {
		return code
	}
	if name, ok := byLang[lang]; ok {
		return name
	}
	return byLang[LangEnglish]
}
