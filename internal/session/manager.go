package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avvvet/travelbuddy-intent/internal/logger"
	"github.com/avvvet/travelbuddy-intent/internal/nlu"
)

const (
	// MaxTurns bounds the conversation log; older turns are evicted first.
	MaxTurns = 10

	// DefaultHistoryLimit is used when callers pass a non-positive limit.
	DefaultHistoryLimit = 5
)

// Manager owns all per-user conversation state.
//
// Every mutation is a read-modify-write against the backend, so concurrent
// updates for the same user are last-write-wins. Callers that need stronger
// guarantees must serialize requests per user.
type Manager struct {
	backend Backend
	logger  logger.Logger
	now     func() time.Time
}

// NewManager creates a new session manager
func NewManager(backend Backend, log logger.Logger) *Manager {
	return &Manager{
		backend: backend,
		logger:  log,
		now:     time.Now,
	}
}

// Session returns the message log for a user, creating an empty one on first access.
// The slice is a read of the stored value, not a live handle: changes to it are
// not written back, use AddMessage to extend the log.
func (m *Manager) Session(ctx context.Context, userID string) ([]Message, error) {
	msgs, found, err := m.backend.Messages.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if found {
		return msgs, nil
	}

	msgs = []Message{}
	if err := m.backend.Messages.Set(ctx, userID, msgs); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.logger.Debug("session", "session created", map[string]interface{}{"user_id": userID})
	return msgs, nil
}

// AddMessage appends a message to the user's log
func (m *Manager) AddMessage(ctx context.Context, userID string, msg Message) error {
	msgs, err := m.Session(ctx, userID)
	if err != nil {
		return err
	}

	msgs = append(msgs, msg)
	if err := m.backend.Messages.Set(ctx, userID, msgs); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// Meta returns the booking state; an unknown user gets the zero Meta.
func (m *Manager) Meta(ctx context.Context, userID string) (Meta, error) {
	meta, _, err := m.backend.Meta.Get(ctx, userID)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to load meta: %w", err)
	}
	return meta, nil
}

// UpdateMeta merges patch into the stored state and returns the result.
// PreviousStep always records the step held before this call.
func (m *Manager) UpdateMeta(ctx context.Context, userID string, patch Meta) (Meta, error) {
	meta, err := m.Meta(ctx, userID)
	if err != nil {
		return Meta{}, err
	}

	meta = mergeMeta(meta, patch)
	if err := m.backend.Meta.Set(ctx, userID, meta); err != nil {
		return Meta{}, fmt.Errorf("failed to save meta: %w", err)
	}

	if meta.StepChanged() {
		m.logger.Debug("session", "step changed", map[string]interface{}{
			"user_id": userID,
			"from":    string(meta.PreviousStep),
			"to":      string(meta.Step),
		})
	}
	return meta, nil
}

func mergeMeta(cur, patch Meta) Meta {
	cur.PreviousStep = cur.Step

	if patch.Destination != "" {
		cur.Destination = patch.Destination
	}
	if patch.StartDate != "" {
		cur.StartDate = patch.StartDate
	}
	if patch.EndDate != "" {
		cur.EndDate = patch.EndDate
	}
	if patch.Travelers != 0 {
		cur.Travelers = patch.Travelers
	}
	if patch.Budget != nil {
		cur.Budget = patch.Budget
	}
	if patch.Step != "" {
		cur.Step = patch.Step
	}
	if patch.SelectedHotel != "" {
		cur.SelectedHotel = patch.SelectedHotel
	}
	if patch.MealPlan != "" {
		cur.MealPlan = patch.MealPlan
	}
	if patch.RoomType != "" {
		cur.RoomType = patch.RoomType
	}
	if patch.Filters != nil {
		cur.Filters = patch.Filters
	}
	if patch.Name != "" {
		cur.Name = patch.Name
	}
	if patch.Phone != "" {
		cur.Phone = patch.Phone
	}
	if patch.Email != "" {
		cur.Email = patch.Email
	}
	if patch.Language != "" {
		cur.Language = patch.Language
	}
	if len(patch.Extras) > 0 {
		extras := make(map[string]interface{}, len(cur.Extras)+len(patch.Extras))
		for k, v := range cur.Extras {
			extras[k] = v
		}
		for k, v := range patch.Extras {
			extras[k] = v
		}
		cur.Extras = extras
	}
	return cur
}

// AddConversationTurn records one exchange, evicting the oldest turn once
// the log exceeds MaxTurns.
func (m *Manager) AddConversationTurn(ctx context.Context, userID, userMessage, botResponse, intent string, entities *nlu.Entities) (Turn, error) {
	turns, _, err := m.backend.History.Get(ctx, userID)
	if err != nil {
		return Turn{}, fmt.Errorf("failed to load history: %w", err)
	}

	turn := Turn{
		ID:          uuid.NewString(),
		UserMessage: userMessage,
		BotResponse: botResponse,
		Timestamp:   m.now(),
		Intent:      intent,
		Entities:    entities,
	}

	turns = append(turns, turn)
	if len(turns) > MaxTurns {
		turns = append([]Turn(nil), turns[len(turns)-MaxTurns:]...)
	}

	if err := m.backend.History.Set(ctx, userID, turns); err != nil {
		return Turn{}, fmt.Errorf("failed to save history: %w", err)
	}
	return turn, nil
}

// ConversationHistory returns the most recent turns, oldest first.
func (m *Manager) ConversationHistory(ctx context.Context, userID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	turns, err := m.FullConversationHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (m *Manager) FullConversationHistory(ctx context.Context, userID string) ([]Turn, error) {
	turns, _, err := m.backend.History.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if turns == nil {
		turns = []Turn{}
	}
	return turns, nil
}

func (m *Manager) ContextMemory(ctx context.Context, userID string) (ContextMemory, error) {
	mem, _, err := m.backend.Context.Get(ctx, userID)
	if err != nil {
		return ContextMemory{}, fmt.Errorf("failed to load context memory: %w", err)
	}
	return mem, nil
}

// UpdateContextMemory merges non-zero fields of patch into the stored memory.
func (m *Manager) UpdateContextMemory(ctx context.Context, userID string, patch ContextMemory) (ContextMemory, error) {
	mem, err := m.ContextMemory(ctx, userID)
	if err != nil {
		return ContextMemory{}, err
	}

	if patch.LastMentionedHotel != "" {
		mem.LastMentionedHotel = patch.LastMentionedHotel
	}
	if patch.LastMentionedDestination != "" {
		mem.LastMentionedDestination = patch.LastMentionedDestination
	}
	if patch.LastMentionedPrice != nil {
		mem.LastMentionedPrice = patch.LastMentionedPrice
	}
	if patch.LastShownHotels != nil {
		mem.LastShownHotels = patch.LastShownHotels
	}
	if patch.LastComparedHotels != nil {
		mem.LastComparedHotels = patch.LastComparedHotels
	}
	if patch.ImplicitReferences != nil {
		mem.ImplicitReferences = patch.ImplicitReferences
	}

	if err := m.backend.Context.Set(ctx, userID, mem); err != nil {
		return ContextMemory{}, fmt.Errorf("failed to save context memory: %w", err)
	}
	return mem, nil
}

func (m *Manager) AddImplicitReference(ctx context.Context, userID, key string, value interface{}) error {
	mem, err := m.ContextMemory(ctx, userID)
	if err != nil {
		return err
	}

	refs := make(map[string]interface{}, len(mem.ImplicitReferences)+1)
	for k, v := range mem.ImplicitReferences {
		refs[k] = v
	}
	refs[key] = value
	mem.ImplicitReferences = refs

	if err := m.backend.Context.Set(ctx, userID, mem); err != nil {
		return fmt.Errorf("failed to save implicit reference: %w", err)
	}
	return nil
}

func (m *Manager) ImplicitReference(ctx context.Context, userID, key string) (interface{}, bool, error) {
	mem, err := m.ContextMemory(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	value, ok := mem.ImplicitReferences[key]
	return value, ok, nil
}

// ClearSession drops the message log only.
func (m *Manager) ClearSession(ctx context.Context, userID string) error {
	if err := m.backend.Messages.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.logger.Info("session", "session cleared", map[string]interface{}{"user_id": userID})
	return nil
}

func (m *Manager) ClearConversationHistory(ctx context.Context, userID string) error {
	if err := m.backend.History.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) ClearContextMemory(ctx context.Context, userID string) error {
	if err := m.backend.Context.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear context memory: %w", err)
	}
	return nil
}

// ClearAllUserData removes every kind of state held for the user.
func (m *Manager) ClearAllUserData(ctx context.Context, userID string) error {
	if err := m.ClearSession(ctx, userID); err != nil {
		return err
	}
	if err := m.backend.Meta.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear meta: %w", err)
	}
	if err := m.ClearConversationHistory(ctx, userID); err != nil {
		return err
	}
	return m.ClearContextMemory(ctx, userID)
}

// ActiveSessionCount returns the number of users with a message log.
func (m *Manager) ActiveSessionCount(ctx context.Context) (int, error) {
	return m.backend.Messages.Count(ctx)
}
