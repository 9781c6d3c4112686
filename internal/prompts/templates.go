package prompts

import (
	"fmt"
	"strings"

	"github.com/avvvet/travelbuddy-intent/internal/nlu"
	"github.com/avvvet/travelbuddy-intent/internal/rag"
	"github.com/avvvet/travelbuddy-intent/internal/session"
)

const SystemPrompt = `You are TravelBuddy, a friendly travel agent assistant for an Egyptian travel agency. You help customers find and book holiday offers in Sharm El Sheikh, Hurghada, Dahab, Ain Sokhna, Sahl Hasheesh, Istanbul, Bali and Beirut.

IMPORTANT RULES:
1. Always answer in the customer's language. If they write in Arabic, answer in Egyptian Arabic.
2. Only quote prices, hotels and conditions that appear in the OFFER CONTEXT. Never invent offers.
3. Ask for ONE missing detail at a time: destination, travel dates, number of travelers, budget.
4. Keep answers short and friendly, suitable for a chat widget.
5. Use the search_hotels or get_destination_info functions when you need offer data that is not in the context.
6. When the customer is ready to book, ask for their name, phone number and email.`

var fallbackMessages = map[string]string{
	nlu.LangEnglish: "Sorry, I couldn't process that right now. Could you rephrase, or tell me which destination you're interested in?",
	nlu.LangArabic:  "معلش، مقدرتش أفهم طلبك دلوقتي. ممكن توضح أكتر أو تقولي حابب تسافر فين؟",
}

// FallbackMessage is sent when no better reply can be produced.
func FallbackMessage(lang string) string {
	if msg, ok := fallbackMessages[lang]; ok {
		return msg
	}
	return fallbackMessages[nlu.LangEnglish]
}

// BuildContextPrompt renders the per-turn system message: booking state,
// retrieved offer chunks and any hotels found for this turn.
func BuildContextPrompt(meta session.Meta, chunks []rag.ScoredChunk, hotels []rag.Hotel, lang string) string {
	var builder strings.Builder

	builder.WriteString("BOOKING STATE:\n")
	builder.WriteString(buildStateSection(meta))

	builder.WriteString("\nOFFER CONTEXT:\n")
	if len(chunks) == 0 && len(hotels) == 0 {
		builder.WriteString("No matching offers found.\n")
	}
	for _, c := range chunks {
		builder.WriteString(fmt.Sprintf("[%s] %s\n%s\n\n", c.ID, c.Title, c.Text))
	}
	if len(hotels) > 0 {
		builder.WriteString(FormatHotels(hotels, lang))
	}

	builder.WriteString(fmt.Sprintf("\nReply language: %s\n", lang))
	return builder.String()
}

func buildStateSection(meta session.Meta) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("- step: %s\n", meta.CurrentStep()))
	if meta.Destination != "" {
		builder.WriteString(fmt.Sprintf("- destination: %s\n", rag.DestinationName(meta.Destination, nlu.LangEnglish)))
	}
	if meta.StartDate != "" {
		builder.WriteString(fmt.Sprintf("- dates: %s to %s\n", meta.StartDate, meta.EndDate))
	}
	if meta.Travelers > 0 {
		builder.WriteString(fmt.Sprintf("- travelers: %d\n", meta.Travelers))
	}
	if meta.Budget != nil {
		builder.WriteString(fmt.Sprintf("- budget: %s\n", formatBudget(*meta.Budget)))
	}
	if meta.SelectedHotel != "" {
		builder.WriteString(fmt.Sprintf("- selected hotel: %s\n", meta.SelectedHotel))
	}
	if meta.MealPlan != "" {
		builder.WriteString(fmt.Sprintf("- meal plan: %s\n", nlu.MealPlanName(meta.MealPlan, nlu.LangEnglish)))
	}
	if meta.RoomType != "" {
		builder.WriteString(fmt.Sprintf("- room type: %s\n", meta.RoomType))
	}
	return builder.String()
}

func formatBudget(b session.Budget) string {
	if b.IsAmount() {
		return fmt.Sprintf("%.0f", *b.Amount)
	}
	parts := []string{}
	if b.Label != "" {
		parts = append(parts, b.Label)
	}
	if b.Min != nil {
		parts = append(parts, fmt.Sprintf("min %.0f", *b.Min))
	}
	if b.Max != nil {
		parts = append(parts, fmt.Sprintf("max %.0f", *b.Max))
	}
	return strings.Join(parts, ", ")
}

// FormatHotels renders a numbered hotel list, the same numbering users refer
// to with "the second one".
func FormatHotels(hotels []rag.Hotel, lang string) string {
	var builder strings.Builder
	for i, h := range hotels {
		line := fmt.Sprintf("%d. %s", i+1, h.DisplayName(lang))
		if h.Stars > 0 {
			line += " " + strings.Repeat("⭐", h.Stars)
		}
		if h.Price > 0 {
			if lang == nlu.LangArabic {
				line += fmt.Sprintf(" - %.0f %s للفرد", h.Price, h.Currency)
			} else {
				line += fmt.Sprintf(" - %.0f %s per person", h.Price, h.Currency)
			}
		}
		if h.MealPlan != "" {
			line += fmt.Sprintf(" (%s)", nlu.MealPlanName(h.MealPlan, lang))
		}
		builder.WriteString(line + "\n")
	}
	return builder.String()
}

// FormatChunks joins chunk texts for a direct reply without the model.
func FormatChunks(chunks []rag.ScoredChunk) string {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, "\n\n")
}

// FormatSuggestions renders the follow-up options as a short prompt.
func FormatSuggestions(suggestions []string, lang string) string {
	if len(suggestions) == 0 {
		return FallbackMessage(lang)
	}
	header := "You can try:"
	if lang == nlu.LangArabic {
		header = "ممكن تجرب:"
	}
	return header + "\n- " + strings.Join(suggestions, "\n- ")
}
