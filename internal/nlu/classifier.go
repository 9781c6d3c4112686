package nlu

import (
	"math"

	"github.com/avvvet/travelbuddy-intent/internal/logger"
)

// MinConfidence is the score below which a message is reported as unknown.
const MinConfidence = 0.3

// ConversationContext is what the classifier knows about earlier turns.
type ConversationContext struct {
	Destination   string
	SelectedHotel string
	Step          string
	Language      string
}

// Intent is the classification result for one message.
type Intent struct {
	Type        IntentType `json:"type" yaml:"type"`
	Confidence  float64    `json:"confidence" yaml:"confidence"`
	Entities    Entities   `json:"entities" yaml:"entities"`
	Suggestions []string   `json:"suggestions" yaml:"suggestions"`
}

// ValidationResult is advisory; callers decide whether to act on it.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// IntentService is stateless and safe to share across requests.
type IntentService struct {
	catalog []Rule
	logger  logger.Logger
}

func NewIntentService(log logger.Logger) *IntentService {
	return &IntentService{
		catalog: Catalog,
		logger:  log,
	}
}

// AnalyzeMessage extracts entities, classifies the message and attaches the
// suggestion list for the detected language.
func (s *IntentService) AnalyzeMessage(message string, ctx *ConversationContext) Intent {
	entities := ExtractEntities(message, ctx)
	intentType, confidence := s.Classify(message, entities, ctx)

	s.logger.Debug("nlu", "message classified", map[string]interface{}{
		"intent":      string(intentType),
		"confidence":  confidence,
		"destination": entities.Destination,
		"language":    entities.Language,
	})

	return Intent{
		Type:        intentType,
		Confidence:  confidence,
		Entities:    entities,
		Suggestions: SuggestionsFor(intentType, entities.Language),
	}
}

// Classify scores every catalog rule independently and keeps the first rule
// reaching the highest score. Each matching pattern adds 0.5; complete
// required entities add 0.3, incomplete ones subtract 0.2 from an already
// positive score; boosts are added last.
func (s *IntentService) Classify(message string, entities Entities, ctx *ConversationContext) (IntentType, float64) {
	best := IntentUnknown
	maxScore := 0.0

	for _, rule := range s.catalog {
		score := scoreRule(rule, message, entities, ctx)
		if score > maxScore {
			maxScore = score
			best = rule.Type
		}
	}

	confidence := math.Min(maxScore, 1.0)
	if confidence < MinConfidence {
		return IntentUnknown, confidence
	}
	return best, confidence
}

func scoreRule(rule Rule, message string, entities Entities, ctx *ConversationContext) float64 {
	score := 0.0
	for _, p := range rule.Patterns {
		if p.MatchString(message) {
			score += 0.5
		}
	}

	if len(rule.RequiredEntities) > 0 {
		complete := true
		for _, key := range rule.RequiredEntities {
			if !entities.Has(key) {
				complete = false
				break
			}
		}
		if complete {
			score += 0.3
		} else if score > 0 {
			score -= 0.2
		}
	}

	if rule.Boost != nil {
		score += rule.Boost(entities, ctx)
	}
	return score
}

// ValidateIntent runs intent-specific sanity checks.
func (s *IntentService) ValidateIntent(intent Intent) ValidationResult {
	var errs []string

	switch intent.Type {
	case IntentHotelComparison:
		if len(intent.Entities.HotelNames) < 2 {
			errs = append(errs, "comparison requires at least two hotels")
		}
	case IntentBookingRequest:
		if intent.Entities.HotelName == "" && intent.Entities.Destination == "" {
			errs = append(errs, "booking requires a hotel or destination")
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
