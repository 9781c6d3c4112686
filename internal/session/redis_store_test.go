package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/travelbuddy-intent/internal/logger"
)

// Runs only against a live server, e.g. REDIS_URL=redis://localhost:6379/15
func TestRedisBackend(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	client, err := NewRedisClient(url)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	m := NewManager(NewRedisBackend(client, time.Minute), logger.NewNop())
	userID := "test-" + uuid.NewString()
	defer m.ClearAllUserData(ctx, userID)

	floor := 2000.0
	_, err = m.UpdateMeta(ctx, userID, Meta{Destination: "istanbul", Budget: &Budget{Min: &floor, Label: "mid"}})
	require.NoError(t, err)
	_, err = m.UpdateMeta(ctx, userID, Meta{Step: StepDatesSelected})
	require.NoError(t, err)

	meta, err := m.Meta(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "istanbul", meta.Destination)
	assert.Equal(t, 2000.0, *meta.Budget.Min)
	assert.Equal(t, StepDatesSelected, meta.Step)

	require.NoError(t, m.AddMessage(ctx, userID, Message{Role: RoleUser, Content: "hi"}))
	msgs, err := m.Session(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	require.NoError(t, m.ClearAllUserData(ctx, userID))
	meta, err = m.Meta(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, Meta{}, meta)
}
