package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/models"
)

func dialHub(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsAlertEvents(t *testing.T) {
	hub := NewHub(common.NewSilentLogger())
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dialHub(t, srv.URL)

	// Registration is asynchronous to the dial returning.
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.AlertTriggered(models.AlertEvent{
		Alert:        models.PriceAlert{ID: "a1", CoinID: "bitcoin", Symbol: "BTC", Type: models.AlertAbove, TargetPrice: 50000},
		CurrentPrice: 51000,
		OccurredAt:   time.Now(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string `json:"type"`
		Data struct {
			Alert        models.PriceAlert `json:"alert"`
			CurrentPrice float64           `json:"current_price"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "alert_triggered", msg.Type)
	assert.Equal(t, "a1", msg.Data.Alert.ID)
	assert.Equal(t, 51000.0, msg.Data.CurrentPrice)
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub(common.NewSilentLogger())
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dialHub(t, srv.URL)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	// Broadcasting with no clients is a no-op.
	hub.Broadcast("price_update", map[string]float64{"bitcoin": 50000})
}

func TestHubCloseRejectsNewClients(t *testing.T) {
	hub := NewHub(common.NewSilentLogger())

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dialHub(t, srv.URL)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.ClientCount())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "closed hub terminates existing connections")
}

func TestFanout(t *testing.T) {
	var got []string
	a := notifierFunc(func(e models.AlertEvent) { got = append(got, "a:"+e.Alert.ID) })
	b := notifierFunc(func(e models.AlertEvent) { got = append(got, "b:"+e.Alert.ID) })

	Fanout{a, b}.AlertTriggered(models.AlertEvent{Alert: models.PriceAlert{ID: "x"}})
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}

type notifierFunc func(models.AlertEvent)

func (f notifierFunc) AlertTriggered(e models.AlertEvent) { f(e) }
