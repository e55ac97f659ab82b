package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/utils"
)

const secret = "test-secret"

func startServer(t *testing.T) (*Manager, string) {
	t.Helper()
	m := NewManager(zap.NewNop())
	srv := httptest.NewServer(NewRouter(NewHandler(m, secret, zap.NewNop()), []string{"*"}))
	t.Cleanup(srv.Close)
	t.Cleanup(m.CloseAll)
	return m, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string, userID uint) *websocket.Conn {
	t.Helper()
	token, err := utils.SignToken(secret, userID, "u@example.com", "CLIENT", utils.TokenAccess, time.Minute)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestEmitReachesEveryConnectionOfUser(t *testing.T) {
	m, url := startServer(t)
	first := dial(t, url, 7)
	second := dial(t, url, 7)
	other := dial(t, url, 8)

	require.Eventually(t, func() bool { return len(m.snapshot(7)) == 2 && m.Online(8) }, 2*time.Second, 10*time.Millisecond)

	assert.True(t, m.Emit(7, "appointment_created", map[string]any{"id": 1}))

	for _, c := range []*websocket.Conn{first, second} {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var f struct {
			Event string         `json:"event"`
			Data  map[string]any `json:"data"`
		}
		require.NoError(t, c.ReadJSON(&f))
		assert.Equal(t, "appointment_created", f.Event)
		assert.EqualValues(t, 1, f.Data["id"])
	}

	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other users must not receive the event")
}

func TestEmitToOfflineUser(t *testing.T) {
	m, _ := startServer(t)
	assert.False(t, m.Emit(99, "notification", nil))
}

func TestDisconnectLeavesRoom(t *testing.T) {
	m, url := startServer(t)
	conn := dial(t, url, 3)
	require.Eventually(t, func() bool { return m.Online(3) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return !m.Online(3) }, 2*time.Second, 10*time.Millisecond)
}

func TestHandshakeRequiresAccessToken(t *testing.T) {
	_, url := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	refresh, err := utils.SignToken(secret, 1, "u@example.com", "CLIENT", utils.TokenRefresh, time.Minute)
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(url+"?token="+refresh, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
