package brackets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHub_PublishReachesRoomOnly(t *testing.T) {
	hub, _ := startHub(t)
	inRoom := hub.NewClient(nil, RoomForTournament(1))
	elsewhere := hub.NewClient(nil, RoomForTournament(2))
	require.True(t, hub.Subscribe(inRoom))
	require.True(t, hub.Subscribe(elsewhere))
	require.Eventually(t, func() bool {
		return hub.RoomSize("1") == 1 && hub.RoomSize("2") == 1
	}, time.Second, 5*time.Millisecond)

	hub.Publish(1, EventRoundCreated, map[string]int{"number": 2})

	var msg WebSocketMessage
	select {
	case raw := <-inRoom.Send:
		require.NoError(t, json.Unmarshal(raw, &msg))
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
	assert.Equal(t, EventRoundCreated, msg.Type)
	assert.Equal(t, "1", msg.RoomID)
	assert.NotEmpty(t, msg.EventID)
	assert.Equal(t, map[string]any{"number": float64(2)}, msg.Payload)
	assert.Empty(t, elsewhere.Send)
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	hub, _ := startHub(t)
	c := hub.NewClient(nil, "5")
	require.True(t, hub.Subscribe(c))
	require.Eventually(t, func() bool { return hub.RoomSize("5") == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister <- c
	require.Eventually(t, func() bool { return hub.RoomSize("5") == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
	hub.Publish(5, EventResultRecorded, nil)
}

func TestHub_StopClosesEverything(t *testing.T) {
	hub, cancel := startHub(t)
	c := hub.NewClient(nil, "9")
	require.True(t, hub.Subscribe(c))
	require.Eventually(t, func() bool { return hub.RoomSize("9") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return !hub.Subscribe(hub.NewClient(nil, "9")) }, time.Second, 5*time.Millisecond)
	assert.Zero(t, hub.RoomSize("9"))
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_PublishKeepsOrder(t *testing.T) {
	hub, _ := startHub(t)
	c := hub.NewClient(nil, "3")
	require.True(t, hub.Subscribe(c))
	require.Eventually(t, func() bool { return hub.RoomSize("3") == 1 }, time.Second, 5*time.Millisecond)

	events := []string{EventResultRecorded, EventRoundCreated, EventTournamentFinished}
	for _, e := range events {
		hub.Publish(3, e, nil)
	}
	for _, want := range events {
		select {
		case raw := <-c.Send:
			var msg WebSocketMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, want, msg.Type)
		case <-time.After(time.Second):
			t.Fatalf("%s not delivered", want)
		}
	}
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.Publish(1, EventResultRecorded, i)
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked without a running hub")
	}
	assert.Len(t, hub.Broadcast, broadcastBuffer)
}
