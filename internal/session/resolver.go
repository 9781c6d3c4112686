package session

import (
	"context"
	"regexp"
)

// Sentinels returned by ResolveImplicitReference for the caller to resolve
// against its own hotel list.
const (
	RefCheapest      = "cheapest"
	RefMostExpensive = "most_expensive"
)

var (
	demonstrativePattern = regexp.MustCompile(`(?i)\b(this|that|it)\b|(^|\s)(هذا|هذه|ده|دي|دا)($|\s|[؟?.,!])`)
	hotelOrPricePattern  = regexp.MustCompile(`(?i)\b(price|cost|hotel)\b|سعر|تكلفة|فندق|كام`)

	// Arabic ordinals must stand alone as words. The bare masculine forms of
	// "second" and "third" also mean "again" in colloquial Arabic, so they
	// only count with the article or when followed by "one" or "hotel".
	ordinalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(first|1st)\b|(^|\s)(ال)?(أول|اول)(ى|ي)?($|\s|[؟?.,!])`),
		regexp.MustCompile(`(?i)\b(second|2nd)\b|(^|\s)(ال(ثاني|تاني)(ة|ه)?|(ثاني|تاني)\s+(واحد|فندق))($|\s|[؟?.,!])`),
		regexp.MustCompile(`(?i)\b(third|3rd)\b|(^|\s)(ال(ثالث|تالت)(ة|ه)?|(ثالث|تالت)\s+(واحد|فندق))($|\s|[؟?.,!])`),
	}

	cheapestPattern      = regexp.MustCompile(`(?i)\bcheapest\b|أرخص|ارخص`)
	mostExpensivePattern = regexp.MustCompile(`(?i)\bmost expensive\b|أغلى|اغلى`)
)

// ResolveImplicitReference maps "this hotel", "the second one" and similar
// phrases to a hotel name from context memory. Only the most recently shown
// list is considered. It returns false when nothing matched.
func (m *Manager) ResolveImplicitReference(ctx context.Context, userID, message string) (string, bool, error) {
	mem, err := m.ContextMemory(ctx, userID)
	if err != nil {
		return "", false, err
	}

	if demonstrativePattern.MatchString(message) && hotelOrPricePattern.MatchString(message) {
		if mem.LastMentionedHotel != "" {
			return mem.LastMentionedHotel, true, nil
		}
		if len(mem.LastShownHotels) > 0 {
			return mem.LastShownHotels[0], true, nil
		}
	}

	for i, p := range ordinalPatterns {
		if p.MatchString(message) && i < len(mem.LastShownHotels) {
			return mem.LastShownHotels[i], true, nil
		}
	}

	if cheapestPattern.MatchString(message) {
		return RefCheapest, true, nil
	}
	if mostExpensivePattern.MatchString(message) {
		return RefMostExpensive, true, nil
	}
	return "", false, nil
}
