package artifacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreSaveLoad(t *testing.T) {
	s := NewFileStore(t.TempDir())

	type plan struct {
		RequestID string   `json:"request_id"`
		Stops     []string `json:"stops"`
	}

	require.NoError(t, s.Save(context.Background(), "req-1", "plan", plan{RequestID: "req-1", Stops: []string{"a"}}))
	require.NoError(t, s.Save(context.Background(), "req-1", "plan", plan{RequestID: "req-1", Stops: []string{"a", "b"}}))

	var got plan
	require.NoError(t, s.Load("req-1", "plan", &got))
	assert.Equal(t, []string{"a", "b"}, got.Stops)

	require.Error(t, s.Load("req-1", "itinerary", &got))
}

func TestFileStoreRejectsPathSegments(t *testing.T) {
	s := NewFileStore(t.TempDir())

	require.Error(t, s.Save(context.Background(), "../escape", "plan", 1))
	require.Error(t, s.Save(context.Background(), "req", "a/b", 1))
}
