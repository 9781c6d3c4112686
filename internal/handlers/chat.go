package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/avvvet/travelbuddy-intent/internal/llm"
	"github.com/avvvet/travelbuddy-intent/internal/logger"
	"github.com/avvvet/travelbuddy-intent/internal/models"
	"github.com/avvvet/travelbuddy-intent/internal/nlu"
	"github.com/avvvet/travelbuddy-intent/internal/prompts"
	"github.com/avvvet/travelbuddy-intent/internal/rag"
	"github.com/avvvet/travelbuddy-intent/internal/session"
	"github.com/avvvet/travelbuddy-intent/internal/validation"
)

const (
	searchLimit = 3

	// maxPromptMessages caps how much of the raw message log is sent to the model.
	maxPromptMessages = 20
)

// ChatHandler runs one user message through the whole pipeline: session
// lookup, entity and intent analysis, retrieval, state update, reply
// generation and turn logging.
type ChatHandler struct {
	sessions  *session.Manager
	intents   *nlu.IntentService
	offers    *rag.Service
	validator *validation.Service
	provider  llm.Provider
	timeout   time.Duration
	validate  *validator.Validate
	logger    logger.Logger
}

// NewChatHandler wires the pipeline. A nil provider makes every reply come
// from the deterministic fallback; a zero timeout leaves model calls bounded
// only by ctx.
func NewChatHandler(sessions *session.Manager, intents *nlu.IntentService, offers *rag.Service, v *validation.Service, provider llm.Provider, timeout time.Duration, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		sessions:  sessions,
		intents:   intents,
		offers:    offers,
		validator: v,
		provider:  provider,
		timeout:   timeout,
		validate:  validator.New(),
		logger:    log,
	}
}

// turn carries the intermediate results of one ProcessMessage call.
type turn struct {
	requestID string
	userID    string
	message   string
	lang      string

	meta     session.Meta
	memory   session.ContextMemory
	selected string
	intent   nlu.Intent

	hotels   []rag.Hotel
	compared []string
	chunks   []rag.ScoredChunk
	answer   string
}

func (h *ChatHandler) ProcessMessage(ctx context.Context, request *models.ChatRequest) (*models.ChatResponse, error) {
	t := &turn{requestID: uuid.NewString(), userID: request.UserID, message: request.Message}

	if err := h.validateRequest(request); err != nil {
		return h.createErrorResponse(t, models.ErrorInvalidRequest, err), nil
	}

	t.lang = request.Language
	if t.lang == "" {
		t.lang = nlu.DetectLanguage(request.Message)
	}

	if err := h.loadState(ctx, t); err != nil {
		return h.createErrorResponse(t, models.ErrorSessionStore, err), nil
	}

	if code, err := h.resolveReference(ctx, t); err != nil {
		return h.createErrorResponse(t, code, err), nil
	}

	t.intent = h.intents.AnalyzeMessage(request.Message, &nlu.ConversationContext{
		Destination:   t.meta.Destination,
		SelectedHotel: t.selected,
		Step:          string(t.meta.CurrentStep()),
		Language:      t.lang,
	})
	if check := h.intents.ValidateIntent(t.intent); !check.Valid {
		h.logger.Debug("handler", "intent failed validation", map[string]interface{}{
			"user_id": t.userID,
			"intent":  string(t.intent.Type),
			"errors":  check.Errors,
		})
	}

	if err := h.retrieve(t); err != nil {
		return h.createErrorResponse(t, models.ErrorRetrieval, err), nil
	}

	meta, err := h.sessions.UpdateMeta(ctx, t.userID, h.metaPatch(t))
	if err != nil {
		return h.createErrorResponse(t, models.ErrorSessionStore, err), nil
	}
	t.meta = meta

	reply := h.generateReply(ctx, t)

	if err := h.recordTurn(ctx, t, reply); err != nil {
		return h.createErrorResponse(t, models.ErrorSessionStore, err), nil
	}

	h.logger.Info("handler", "message processed", map[string]interface{}{
		"request_id": t.requestID,
		"user_id":    t.userID,
		"intent":     string(t.intent.Type),
		"confidence": t.intent.Confidence,
		"step":       string(t.meta.CurrentStep()),
		"hotels":     len(t.hotels),
		"chunks":     len(t.chunks),
	})

	entities := t.intent.Entities
	return &models.ChatResponse{
		RequestID:   t.requestID,
		UserID:      t.userID,
		Status:      models.StatusOK,
		Message:     reply,
		Language:    t.lang,
		Intent:      string(t.intent.Type),
		Confidence:  t.intent.Confidence,
		Entities:    &entities,
		Suggestions: t.intent.Suggestions,
		Step:        string(t.meta.CurrentStep()),
		StepChanged: t.meta.StepChanged(),
		Hotels:      t.hotels,
		Sources:     chunkIDs(t.chunks),
	}, nil
}

func (h *ChatHandler) validateRequest(request *models.ChatRequest) error {
	if request.UserID == "" {
		return session.ErrEmptyID
	}
	if err := h.validate.Struct(request); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// loadState seeds a new session with the system prompt and records the user message.
func (h *ChatHandler) loadState(ctx context.Context, t *turn) error {
	msgs, err := h.sessions.Session(ctx, t.userID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		if err := h.sessions.AddMessage(ctx, t.userID, session.Message{Role: session.RoleSystem, Content: prompts.SystemPrompt}); err != nil {
			return err
		}
	}
	if err := h.sessions.AddMessage(ctx, t.userID, session.Message{Role: session.RoleUser, Content: t.message}); err != nil {
		return err
	}

	if t.meta, err = h.sessions.Meta(ctx, t.userID); err != nil {
		return err
	}
	if t.memory, err = h.sessions.ContextMemory(ctx, t.userID); err != nil {
		return err
	}
	t.selected = t.meta.SelectedHotel
	return nil
}

// resolveReference turns "the second one" or "the cheapest" into a hotel name.
// On failure it also returns the error code matching the failing layer.
func (h *ChatHandler) resolveReference(ctx context.Context, t *turn) (string, error) {
	ref, ok, err := h.sessions.ResolveImplicitReference(ctx, t.userID, t.message)
	if err != nil {
		return models.ErrorSessionStore, err
	}
	if !ok {
		return "", nil
	}

	if ref != session.RefCheapest && ref != session.RefMostExpensive {
		t.selected = ref
		return "", nil
	}

	if len(t.memory.LastShownHotels) == 0 {
		return "", nil
	}
	shown, err := h.offers.CompareHotels(t.memory.LastShownHotels, t.meta.Destination)
	if err != nil {
		return models.ErrorRetrieval, err
	}
	if len(shown) == 0 {
		return "", nil
	}

	sort.SliceStable(shown, func(i, j int) bool { return shown[i].Price < shown[j].Price })
	if ref == session.RefCheapest {
		t.selected = shown[0].Name
	} else {
		t.selected = shown[len(shown)-1].Name
	}
	return "", nil
}

// retrieve picks the lookup that fits the intent and falls back to a smart
// search when nothing specific was found.
func (h *ChatHandler) retrieve(t *turn) error {
	e := t.intent.Entities
	var err error

	switch t.intent.Type {
	case nlu.IntentGreeting, nlu.IntentSupportRequest, nlu.IntentBookingModification:
		return nil

	case nlu.IntentHotelSearch:
		if e.Destination != "" {
			t.hotels, err = h.offers.SearchHotels(e.Destination, hotelFilters(e))
		}

	case nlu.IntentHotelComparison:
		t.hotels, err = h.offers.CompareHotels(e.HotelNames, e.Destination)
		for _, hotel := range t.hotels {
			t.compared = append(t.compared, hotel.Name)
		}

	case nlu.IntentRecommendation:
		var recs []rag.Recommendation
		recs, err = h.offers.GetRecommendations(rag.Preferences{
			Destination: e.Destination,
			Stars:       e.Stars,
			MaxPrice:    maxPrice(e),
			MealPlan:    e.MealPlan,
			Amenities:   e.Amenities,
		}, t.lang)
		for _, r := range recs {
			t.hotels = append(t.hotels, r.Hotel)
		}

	case nlu.IntentGeneralQuestion:
		t.answer, _ = h.offers.AnswerGeneralQuestion(t.message, t.lang)

	case nlu.IntentPriceInquiry, nlu.IntentBookingRequest, nlu.IntentAmenitiesInquiry:
		if t.selected != "" {
			t.hotels, err = h.offers.CompareHotels([]string{t.selected}, e.Destination)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to look up offers: %w", err)
	}

	if len(t.hotels) == 0 && t.answer == "" {
		result, err := h.offers.SmartSearch(t.message, rag.RetrieveOptions{Lang: t.lang, Limit: searchLimit})
		if err != nil {
			return fmt.Errorf("failed to search offers: %w", err)
		}
		t.chunks = result.Chunks
	}
	return nil
}

// generateReply asks the model and falls back to a deterministic reply when
// no provider is configured or the call fails.
func (h *ChatHandler) generateReply(ctx context.Context, t *turn) string {
	if h.provider == nil {
		return h.fallbackReply(t)
	}

	messages := h.buildMessages(ctx, t)
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	reply, err := h.provider.Generate(ctx, messages)
	if err != nil {
		h.logger.Warn("handler", "llm call failed, using fallback", map[string]interface{}{
			"request_id": t.requestID,
			"error":      err.Error(),
		})
		return h.fallbackReply(t)
	}

	if reply.FunctionCall != nil {
		if err := h.executeFunction(t, reply.FunctionCall); err != nil {
			h.logger.Warn("handler", "function call failed", map[string]interface{}{
				"request_id": t.requestID,
				"function":   reply.FunctionCall.Name,
				"error":      err.Error(),
			})
		}
		return h.fallbackReply(t)
	}
	return reply.Text
}

func (h *ChatHandler) buildMessages(ctx context.Context, t *turn) []llm.Message {
	system := prompts.SystemPrompt + "\n\n" + prompts.BuildContextPrompt(t.meta, t.chunks, t.hotels, t.lang)
	if t.answer != "" {
		system += "\nAGENCY ANSWER:\n" + t.answer + "\n"
	}
	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}

	history, err := h.sessions.Session(ctx, t.userID)
	if err != nil {
		history = []session.Message{{Role: session.RoleUser, Content: t.message}}
	}
	if len(history) > maxPromptMessages {
		history = history[len(history)-maxPromptMessages:]
	}
	for _, m := range history {
		if m.Role == session.RoleSystem {
			continue
		}
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

// executeFunction runs a model-requested lookup and stores its results on t.
func (h *ChatHandler) executeFunction(t *turn, call *llm.FunctionCall) error {
	destination, _ := call.Arguments["destination"].(string)
	if destination == "" {
		destination = t.meta.Destination
	}
	if code := nlu.ExtractDestination(destination); code != "" {
		destination = code
	}

	switch call.Name {
	case llm.FuncSearchHotels:
		filters := rag.HotelFilters{}
		if stars, ok := call.Arguments["stars"].(float64); ok {
			filters.Stars = int(stars)
		}
		if price, ok := call.Arguments["max_price"].(float64); ok {
			filters.MaxPrice = price
		}
		if meal, ok := call.Arguments["meal_plan"].(string); ok {
			filters.MealPlan = meal
		}
		hotels, err := h.offers.SearchHotels(destination, filters)
		if err != nil {
			return err
		}
		t.hotels = hotels
		return nil

	case llm.FuncGetDestinationInfo:
		infoType, _ := call.Arguments["info_type"].(string)
		chunks, err := h.offers.GetDestinationInfo(destination, infoType, t.lang)
		if err != nil {
			return err
		}
		t.hotels = nil
		t.chunks = make([]rag.ScoredChunk, 0, len(chunks))
		for _, c := range chunks {
			t.chunks = append(t.chunks, rag.ScoredChunk{Chunk: c})
		}
		return nil
	}
	return fmt.Errorf("unknown function %q", call.Name)
}

func (h *ChatHandler) fallbackReply(t *turn) string {
	switch {
	case t.answer != "":
		return t.answer
	case len(t.hotels) > 0:
		header := "Here are the options I found:\n"
		if t.lang == nlu.LangArabic {
			header = "دي الاختيارات المتاحة:\n"
		}
		return header + prompts.FormatHotels(t.hotels, t.lang)
	case len(t.chunks) > 0:
		return prompts.FormatChunks(t.chunks[:1])
	default:
		return prompts.FormatSuggestions(t.intent.Suggestions, t.lang)
	}
}

// recordTurn stores the reply, the turn log entry and what was shown.
func (h *ChatHandler) recordTurn(ctx context.Context, t *turn, reply string) error {
	if err := h.sessions.AddMessage(ctx, t.userID, session.Message{Role: session.RoleAssistant, Content: reply}); err != nil {
		return err
	}

	entities := t.intent.Entities
	if _, err := h.sessions.AddConversationTurn(ctx, t.userID, t.message, reply, string(t.intent.Type), &entities); err != nil {
		return err
	}

	patch := session.ContextMemory{
		LastMentionedDestination: entities.Destination,
		LastMentionedHotel:       t.selected,
	}
	if patch.LastMentionedHotel == "" {
		patch.LastMentionedHotel = entities.HotelName
	}
	if len(t.hotels) > 0 {
		names := make([]string, 0, len(t.hotels))
		for _, hotel := range t.hotels {
			names = append(names, hotel.Name)
			if hotel.Name == t.selected {
				price := hotel.Price
				patch.LastMentionedPrice = &price
			}
		}
		patch.LastShownHotels = names
	}
	if len(t.compared) > 0 {
		patch.LastComparedHotels = t.compared
	}
	if _, err := h.sessions.UpdateContextMemory(ctx, t.userID, patch); err != nil {
		return err
	}

	return h.sessions.AddImplicitReference(ctx, t.userID, "last_intent", string(t.intent.Type))
}

// ClearSession removes all state held for a user.
func (h *ChatHandler) ClearSession(ctx context.Context, request *models.ClearRequest) *models.ClearResponse {
	response := &models.ClearResponse{UserID: request.UserID, Status: models.StatusOK}

	if err := h.validate.Struct(request); err != nil {
		setClearError(response, models.ErrorInvalidRequest, session.ErrEmptyID)
		return response
	}
	if err := h.sessions.ClearAllUserData(ctx, request.UserID); err != nil {
		setClearError(response, models.ErrorSessionStore, err)
	}
	return response
}

func setClearError(response *models.ClearResponse, code string, err error) {
	msg := err.Error()
	response.Status = models.StatusError
	response.ErrorCode = &code
	response.ErrorMessage = &msg
}

func (h *ChatHandler) createErrorResponse(t *turn, errorCode string, err error) *models.ChatResponse {
	h.logger.Error("handler", "failed to process message", map[string]interface{}{
		"request_id": t.requestID,
		"user_id":    t.userID,
		"code":       errorCode,
		"error":      err,
	})

	errorMessage := err.Error()
	if errors.Is(err, session.ErrEmptyID) {
		errorMessage = "user_id is required"
	}
	return &models.ChatResponse{
		RequestID:    t.requestID,
		UserID:       t.userID,
		Status:       models.StatusError,
		Message:      prompts.FallbackMessage(t.lang),
		Language:     t.lang,
		ErrorCode:    &errorCode,
		ErrorMessage: &errorMessage,
	}
}

func chunkIDs(chunks []rag.ScoredChunk) []string {
	if len(chunks) == 0 {
		return nil
	}
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ID)
	}
	return ids
}
