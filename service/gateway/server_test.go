package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Gateway, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &fakeStore{idents: map[string]*Identity{
		"u1": {ID: "u1", FullName: "User One"},
		"u2": {ID: "u2", FullName: "User Two"},
		"u3": {ID: "u3", FullName: "User Three"},
	}}
	gw := New(Config{}, NewSessionValidator(testSecret, store, nil))

	r := gin.New()
	r.GET("/ws", gw.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(gw.Close)
	return gw, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialAs(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	header := http.Header{"Cookie": {"jwt=" + signToken(t, userID, time.Hour)}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type event struct {
	Type    string          `json:"type"`
	UserIDs []string        `json:"userIds"`
	Message json.RawMessage `json:"message"`
}

func readEvent(t *testing.T, conn *websocket.Conn) event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func readPresence(t *testing.T, conn *websocket.Conn) []string {
	t.Helper()
	ev := readEvent(t, conn)
	require.Equal(t, EventOnlineUsers, ev.Type)
	return ev.UserIDs
}

func TestHandshakeRejectedWithoutToken(t *testing.T) {
	gw, srv := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, gw.OnlineUserIDs())
}

func TestHandshakeRejectedWithExpiredToken(t *testing.T) {
	gw, srv := newTestServer(t)

	header := http.Header{"Cookie": {"jwt=" + signToken(t, "u1", -time.Minute)}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, gw.OnlineUserIDs())
}

func TestConnectBroadcastsPresence(t *testing.T) {
	_, srv := newTestServer(t)

	c1 := dialAs(t, srv, "u1")
	assert.Equal(t, []string{"u1"}, readPresence(t, c1))

	c2 := dialAs(t, srv, "u2")
	assert.Equal(t, []string{"u1", "u2"}, readPresence(t, c2))
	assert.Equal(t, []string{"u1", "u2"}, readPresence(t, c1))
}

func TestDisconnectBroadcastsPresence(t *testing.T) {
	gw, srv := newTestServer(t)

	c1 := dialAs(t, srv, "u1")
	readPresence(t, c1)
	c2 := dialAs(t, srv, "u2")
	readPresence(t, c2)
	readPresence(t, c1)

	c2.Close()

	assert.Equal(t, []string{"u1"}, readPresence(t, c1))
	assert.Eventually(t, func() bool {
		ids := gw.OnlineUserIDs()
		return len(ids) == 1 && ids[0] == "u1"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconnectSupersedesOldConnection(t *testing.T) {
	gw, srv := newTestServer(t)

	old := dialAs(t, srv, "u1")
	readPresence(t, old)
	oldConn, ok := gw.LookupConnection("u1")
	require.True(t, ok)

	fresh := dialAs(t, srv, "u1")
	assert.Equal(t, []string{"u1"}, readPresence(t, fresh))

	newConn, ok := gw.LookupConnection("u1")
	require.True(t, ok)
	assert.NotEqual(t, oldConn, newConn)

	// the evicted socket gets torn down by the server
	require.NoError(t, old.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := old.ReadMessage(); err != nil {
			break
		}
	}

	// the stale disconnect must not remove the fresh connection
	assert.Eventually(t, func() bool {
		cur, ok := gw.LookupConnection("u1")
		return ok && cur == newConn
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"u1"}, gw.OnlineUserIDs())
}

func TestDeliverToOnlineUser(t *testing.T) {
	gw, srv := newTestServer(t)

	c1 := dialAs(t, srv, "u1")
	readPresence(t, c1)

	type msg struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	gw.Deliver("u1", NewMessage(msg{ID: "m1", Text: "hello"}))

	ev := readEvent(t, c1)
	require.Equal(t, EventNewMessage, ev.Type)
	var got msg
	require.NoError(t, json.Unmarshal(ev.Message, &got))
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "hello", got.Text)
}

func TestDeliverToOfflineUserIsNoop(t *testing.T) {
	gw, srv := newTestServer(t)

	c1 := dialAs(t, srv, "u1")
	readPresence(t, c1)

	gw.Deliver("u3", NewMessage(map[string]string{"id": "m1"}))

	// the online user must not see someone else's message
	gw.Deliver("u1", NewMessage(map[string]string{"id": "m2"}))
	ev := readEvent(t, c1)
	require.Equal(t, EventNewMessage, ev.Type)
	assert.Contains(t, string(ev.Message), "m2")
}
