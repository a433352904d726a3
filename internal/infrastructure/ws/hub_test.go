package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	e := echo.New()
	e.GET("/v1/ws/countdowns/:channel", hub.Serve)

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) domain.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var e domain.Envelope
	require.NoError(t, json.Unmarshal(msg, &e))
	return e
}

func TestHub_DeliversFramesToChannelSubscribers(t *testing.T) {
	hub, base := startHub(t)
	conn := dial(t, base+"/v1/ws/countdowns/c1")
	require.Eventually(t, func() bool { return hub.Subscribers("c1") == 1 }, time.Second, 5*time.Millisecond)

	err := hub.Display(context.Background(), domain.CountdownFrame{
		RentalID: "r1", Channel: "c1", Text: "Rental time remaining: 00:59:59",
	})
	require.NoError(t, err)

	e := readEnvelope(t, conn)
	assert.Equal(t, domain.EnvelopeFrame, e.Type)
	require.NotNil(t, e.Frame)
	assert.Equal(t, "Rental time remaining: 00:59:59", e.Frame.Text)
}

func TestHub_IgnoresOtherChannels(t *testing.T) {
	hub, base := startHub(t)
	conn := dial(t, base+"/v1/ws/countdowns/c1")
	require.Eventually(t, func() bool { return hub.Subscribers("c1") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Notify(context.Background(), domain.Notification{Channel: "c2", Message: "elsewhere"}))
	require.NoError(t, hub.Notify(context.Background(), domain.Notification{
		Kind: domain.NoticeRentalCompleted, Channel: "c1", Message: "done",
	}))

	e := readEnvelope(t, conn)
	require.NotNil(t, e.Notification)
	assert.Equal(t, "done", e.Notification.Message)
}

func TestHub_BroadcastWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	assert.NoError(t, hub.Notify(context.Background(), domain.Notification{Channel: "nobody"}))
	assert.Equal(t, 0, hub.Subscribers("nobody"))
}

func TestHub_DisconnectLeavesRoom(t *testing.T) {
	hub, base := startHub(t)
	conn := dial(t, base+"/v1/ws/countdowns/c1")
	require.Eventually(t, func() bool { return hub.Subscribers("c1") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers("c1") == 0 }, 2*time.Second, 5*time.Millisecond)
}
