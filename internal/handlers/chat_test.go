package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/travelbuddy-intent/internal/llm"
	"github.com/avvvet/travelbuddy-intent/internal/logger"
	"github.com/avvvet/travelbuddy-intent/internal/models"
	"github.com/avvvet/travelbuddy-intent/internal/nlu"
	"github.com/avvvet/travelbuddy-intent/internal/prompts"
	"github.com/avvvet/travelbuddy-intent/internal/rag"
	"github.com/avvvet/travelbuddy-intent/internal/session"
	"github.com/avvvet/travelbuddy-intent/internal/validation"
)

const hurghadaOffer = `{
  "title": {"en": "Hurghada Summer Offer", "ar": "عرض الغردقة الصيفي"},
  "hotels": [
    {"name": "Steigenberger Aqua Magic", "stars": 5, "price": 14000, "currency": "EGP", "meal_plan": "AI", "amenities": ["pool", "beach"]},
    {"name": "Jaz Aquamarine", "stars": 5, "price": 12500, "currency": "EGP", "meal_plan": "AI", "amenities": ["pool"]},
    {"name": "Sunrise Holidays", "stars": 4, "price": 9000, "currency": "EGP", "meal_plan": "HB"}
  ],
  "price_includes": {"en": ["Accommodation", "Bus transfers"]}
}`

type fakeProvider struct {
	reply *llm.Reply
	err   error
	got   []llm.Message
}

func (f *fakeProvider) Generate(_ context.Context, messages []llm.Message) (*llm.Reply, error) {
	f.got = messages
	return f.reply, f.err
}

type fixture struct {
	handler  *ChatHandler
	sessions *session.Manager
	offers   *rag.Service
}

func newFixture(t *testing.T, provider llm.Provider) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hurghada_offer.json"), []byte(hurghadaOffer), 0o644))

	log := logger.NewNop()
	sessions := session.NewManager(session.NewMemoryBackend(0), log)
	offers := rag.NewService(dir, log)
	clock := func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }

	h := NewChatHandler(sessions, nlu.NewIntentService(log), offers, validation.NewService(clock), provider, time.Second, log)
	return &fixture{handler: h, sessions: sessions, offers: offers}
}

func (f *fixture) send(t *testing.T, userID, message string) *models.ChatResponse {
	t.Helper()
	resp, err := f.handler.ProcessMessage(context.Background(), &models.ChatRequest{UserID: userID, Message: message})
	require.NoError(t, err)
	require.Equal(t, models.StatusOK, resp.Status, "message %q", message)
	return resp
}

func TestHotelSearchWithoutProvider(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.send(t, "u1", "hotels in Hurghada")

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, string(nlu.IntentHotelSearch), resp.Intent)
	assert.Equal(t, nlu.LangEnglish, resp.Language)
	assert.Len(t, resp.Hotels, 3)
	assert.Equal(t, string(session.StepDestinationSelected), resp.Step)
	assert.True(t, resp.StepChanged)
	assert.True(t, strings.HasPrefix(resp.Message, "Here are the options I found:\n1. Steigenberger Aqua Magic"))

	mem, err := f.sessions.ContextMemory(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Steigenberger Aqua Magic", "Jaz Aquamarine", "Sunrise Holidays"}, mem.LastShownHotels)
	assert.Equal(t, "hurghada", mem.LastMentionedDestination)

	msgs, err := f.sessions.Session(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, session.RoleSystem, msgs[0].Role)
	assert.Equal(t, session.RoleUser, msgs[1].Role)
	assert.Equal(t, session.RoleAssistant, msgs[2].Role)

	turns, err := f.sessions.FullConversationHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, string(nlu.IntentHotelSearch), turns[0].Intent)
	assert.Equal(t, "hurghada", turns[0].Entities.Destination)
}

func TestOrdinalReferenceSelectsHotel(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.send(t, "u1", "hotels in Hurghada")
	resp := f.send(t, "u1", "book the second one")

	assert.Equal(t, string(nlu.IntentBookingRequest), resp.Intent)
	assert.Equal(t, string(session.StepHotelSelected), resp.Step)
	require.Len(t, resp.Hotels, 1)
	assert.Equal(t, "Jaz Aquamarine", resp.Hotels[0].Name)

	meta, err := f.sessions.Meta(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jaz Aquamarine", meta.SelectedHotel)
	assert.Equal(t, session.StepDestinationSelected, meta.PreviousStep)

	mem, err := f.sessions.ContextMemory(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, mem.LastMentionedPrice)
	assert.Equal(t, 12500.0, *mem.LastMentionedPrice)
}

func TestCheapestReference(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, "u1", "hotels in Hurghada")
	f.send(t, "u1", "the cheapest please")

	meta, err := f.sessions.Meta(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Holidays", meta.SelectedHotel)
}

func TestContactDetailsAndConfirmation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.send(t, "u1", "hotels in Hurghada")
	f.send(t, "u1", "book the first one")

	resp := f.send(t, "u1", "my name is Ahmed Ali, email Ahmed@Gmail.com phone 01001234567")
	assert.Equal(t, string(session.StepContactInfo), resp.Step)

	meta, err := f.sessions.Meta(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ahmed Ali", meta.Name)
	assert.Equal(t, "ahmed@gmail.com", meta.Email)
	assert.Equal(t, "01001234567", meta.Phone)
	assert.Equal(t, "Steigenberger Aqua Magic", meta.SelectedHotel)

	resp = f.send(t, "u1", "confirm booking")
	assert.Equal(t, string(session.StepBookingConfirmed), resp.Step)
}

func TestGeneralQuestionUsesCannedAnswer(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.send(t, "u1", "do I need a visa for Istanbul")

	want, ok := f.offers.AnswerGeneralQuestion("do I need a visa for Istanbul", nlu.LangEnglish)
	require.True(t, ok)
	assert.Equal(t, want, resp.Message)
	assert.Equal(t, string(session.StepGeneralInquiry), resp.Step)
	assert.Empty(t, resp.Sources)
}

func TestProviderReplyAndPrompt(t *testing.T) {
	provider := &fakeProvider{reply: &llm.Reply{Text: "Hurghada is lovely this time of year."}}
	f := newFixture(t, provider)

	resp := f.send(t, "u1", "tell me about Hurghada")

	assert.Equal(t, "Hurghada is lovely this time of year.", resp.Message)
	require.Len(t, provider.got, 2)
	assert.Equal(t, llm.RoleSystem, provider.got[0].Role)
	assert.Contains(t, provider.got[0].Content, prompts.SystemPrompt)
	assert.Contains(t, provider.got[0].Content, "BOOKING STATE:")
	assert.Contains(t, provider.got[0].Content, "Reply language: en")
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "tell me about Hurghada"}, provider.got[1])

	// a bare destination classifies as a hotel search
	assert.Equal(t, string(nlu.IntentHotelSearch), resp.Intent)
	assert.Len(t, resp.Hotels, 3)
	assert.Empty(t, resp.Sources)
}

func TestArabicWordsContainingOrdinalsKeepStep(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, "u1", "hotels in Hurghada")
	for _, msg := range []string{"هل في انشطة للاولاد؟", "عايز ارجع تاني يوم"} {
		resp := f.send(t, "u1", msg)
		assert.NotEqual(t, string(session.StepHotelSelected), resp.Step, "message %q", msg)
	}

	meta, err := f.sessions.Meta(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, meta.SelectedHotel)
}

type flakyContextKV struct {
	session.KV[session.ContextMemory]
	gets   int
	failAt int
}

func (f *flakyContextKV) Get(ctx context.Context, id string) (session.ContextMemory, bool, error) {
	f.gets++
	if f.gets == f.failAt {
		return session.ContextMemory{}, false, errors.New("connection reset")
	}
	return f.KV.Get(ctx, id)
}

func TestReferenceLookupStoreFailure(t *testing.T) {
	log := logger.NewNop()
	backend := session.NewMemoryBackend(0)
	// loadState reads context memory once, the reference resolver reads it next
	backend.Context = &flakyContextKV{KV: backend.Context, failAt: 2}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hurghada_offer.json"), []byte(hurghadaOffer), 0o644))
	h := NewChatHandler(session.NewManager(backend, log), nlu.NewIntentService(log), rag.NewService(dir, log),
		validation.NewService(time.Now), nil, time.Second, log)

	resp, err := h.ProcessMessage(context.Background(), &models.ChatRequest{UserID: "u1", Message: "the second one"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, resp.Status)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, models.ErrorSessionStore, *resp.ErrorCode)
}

func TestProviderFailureFallsBack(t *testing.T) {
	f := newFixture(t, &fakeProvider{err: errors.New("quota exceeded")})

	resp := f.send(t, "u1", "hotels in Hurghada")

	assert.Contains(t, resp.Message, "Jaz Aquamarine")
	assert.Len(t, resp.Hotels, 3)
}

func TestProviderFunctionCall(t *testing.T) {
	provider := &fakeProvider{reply: &llm.Reply{FunctionCall: &llm.FunctionCall{
		Name:      llm.FuncSearchHotels,
		Arguments: map[string]interface{}{"destination": "Hurghada", "stars": 5.0},
	}}}
	f := newFixture(t, provider)

	resp := f.send(t, "u1", "hello")

	require.Len(t, resp.Hotels, 2)
	assert.Equal(t, "Steigenberger Aqua Magic", resp.Hotels[0].Name)
	assert.Equal(t, "Jaz Aquamarine", resp.Hotels[1].Name)

	mem, err := f.sessions.ContextMemory(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Steigenberger Aqua Magic", "Jaz Aquamarine"}, mem.LastShownHotels)
}

func TestInvalidRequests(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name    string
		request *models.ChatRequest
		message string
	}{
		{"missing user", &models.ChatRequest{Message: "hi"}, "user_id is required"},
		{"missing message", &models.ChatRequest{UserID: "u1"}, ""},
		{"unsupported language", &models.ChatRequest{UserID: "u1", Message: "hi", Language: "fr"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.handler.ProcessMessage(context.Background(), tt.request)
			require.NoError(t, err)
			assert.Equal(t, models.StatusError, resp.Status)
			require.NotNil(t, resp.ErrorCode)
			assert.Equal(t, models.ErrorInvalidRequest, *resp.ErrorCode)
			if tt.message != "" {
				assert.Equal(t, tt.message, *resp.ErrorMessage)
			}
		})
	}

	count, err := f.sessions.ActiveSessionCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestArabicConversation(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.send(t, "u1", "عايز فنادق في الغردقة")

	assert.Equal(t, nlu.LangArabic, resp.Language)
	assert.Equal(t, string(nlu.IntentHotelSearch), resp.Intent)
	assert.True(t, strings.HasPrefix(resp.Message, "دي الاختيارات المتاحة:"))
}

func TestClearSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.send(t, "u1", "hotels in Hurghada")
	f.send(t, "u2", "hotels in Hurghada")

	resp := f.handler.ClearSession(ctx, &models.ClearRequest{UserID: "u1"})
	assert.Equal(t, models.StatusOK, resp.Status)

	meta, err := f.sessions.Meta(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, session.Meta{}, meta)

	meta, err = f.sessions.Meta(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "hurghada", meta.Destination)

	resp = f.handler.ClearSession(ctx, &models.ClearRequest{})
	assert.Equal(t, models.StatusError, resp.Status)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, models.ErrorInvalidRequest, *resp.ErrorCode)
}

func TestNextStep(t *testing.T) {
	budget := session.AmountBudget(20000)

	tests := []struct {
		name   string
		cur    session.Meta
		patch  session.Meta
		intent nlu.IntentType
		want   session.Step
	}{
		{"nothing known", session.Meta{}, session.Meta{}, nlu.IntentGreeting, session.StepInitial},
		{"destination", session.Meta{}, session.Meta{Destination: "dahab"}, nlu.IntentHotelSearch, session.StepDestinationSelected},
		{"dates", session.Meta{Destination: "dahab"}, session.Meta{StartDate: "2026-11-15"}, nlu.IntentUnknown, session.StepDatesSelected},
		{"travelers", session.Meta{Destination: "dahab", StartDate: "2026-11-15"}, session.Meta{Travelers: 2}, nlu.IntentUnknown, session.StepTravelersSelected},
		{"all four", session.Meta{Destination: "dahab", StartDate: "2026-11-15", Travelers: 2}, session.Meta{Budget: budget}, nlu.IntentUnknown, session.StepReadyForOffers},
		{"meal then room", session.Meta{SelectedHotel: "x", MealPlan: "AI"}, session.Meta{RoomType: "double"}, nlu.IntentUnknown, session.StepRoomSelected},
		{"never backwards", session.Meta{Step: session.StepHotelSelected}, session.Meta{Destination: "bali"}, nlu.IntentHotelSearch, session.StepHotelSelected},
		{"side branch", session.Meta{Step: session.StepHotelSelected}, session.Meta{}, nlu.IntentSupportRequest, session.StepSupportContact},
		{"back from side branch", session.Meta{Step: session.StepGeneralInquiry, Destination: "dahab"}, session.Meta{}, nlu.IntentHotelSearch, session.StepDestinationSelected},
		{"modification", session.Meta{}, session.Meta{}, nlu.IntentBookingModification, session.StepBookingModification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextStep(tt.cur, tt.patch, tt.intent))
		})
	}
}
