package ws

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"go-durak/dto"
	"go-durak/middleware"
	"go-durak/service"
	"go-durak/utils"
)

type wsMessage struct {
	Type     string          `json:"type"`
	PlayerID string          `json:"playerID"`
	Seat     int             `json:"seat"`
	From     string          `json:"from"`
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Data     *dto.PlayerView `json:"data"`
	Result   *dto.ResultView `json:"result"`
}

func newTestHub(t *testing.T) (*Hub, *service.RoomService, *httptest.Server) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := service.NewRoomService(rdb, nil, service.Options{})
	hub := NewHub(svc, 10*time.Millisecond)
	svc.SetPresence(hub)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", middleware.OptionalAuth(), hub.HandleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, svc, srv
}

func dial(t *testing.T, srv *httptest.Server, roomID, userID string) *websocket.Conn {
	t.Helper()
	token, err := utils.GenerateAccessToken(userID)
	if err != nil {
		t.Fatal(err)
	}
	return dialQuery(t, srv, "roomID="+roomID+"&token="+token)
}

func dialQuery(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil 读取消息直到 match 返回 true
func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestWebSocketGameAgainstAI(t *testing.T) {
	hub, svc, srv := newTestHub(t)
	roomID, err := svc.CreateRoom(context.Background(), dto.CreateRoomRequest{MaxPlayers: 2, AiCount: 1, UserID: "u1", Seed: 3})
	if err != nil {
		t.Fatal(err)
	}

	conn := dial(t, srv, roomID, "u1")
	hello := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "init" })
	if hello.PlayerID != "u1" || hello.Seat != 1 {
		t.Fatalf("init = %+v", hello)
	}

	// AI 坐在 0 号位先进攻，延迟后轮到我们防守
	first := readUntil(t, conn, func(m wsMessage) bool {
		return m.Type == "sync" && m.Data != nil && m.Data.Actor == 1 && len(m.Data.CenterPile) == 1
	})
	if len(first.Data.Hand) != 6 || first.Data.Seats[0].PlayerID == "u1" {
		t.Fatalf("sync = %+v", first.Data)
	}
	if !hub.IsOnline(roomID, "u1") || hub.OnlineCount() != 1 {
		t.Fatal("u1 should be online")
	}

	conn.WriteJSON(map[string]interface{}{"type": "attack", "payload": first.Data.Hand[0].Code()})
	errMsg := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	if errMsg.Code != "invalid_move" {
		t.Fatalf("error = %+v", errMsg)
	}

	conn.WriteJSON(map[string]interface{}{"type": "defend", "payload": map[string]interface{}{"card": "не карта"}})
	errMsg = readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	if errMsg.Code != "invalid_params" {
		t.Fatalf("error = %+v", errMsg)
	}

	conn.WriteJSON(map[string]interface{}{"type": "shuffle"})
	errMsg = readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	if errMsg.Code != "invalid_params" {
		t.Fatalf("error = %+v", errMsg)
	}

	conn.WriteJSON(map[string]interface{}{"type": "pick_up"})
	readUntil(t, conn, func(m wsMessage) bool {
		return m.Type == "sync" && m.Data != nil && len(m.Data.Hand) == 7
	})

	conn.WriteJSON(map[string]interface{}{"type": "emote", "payload": "👍"})
	emote := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "emote" })
	if emote.From != "u1" || emote.Message != "👍" {
		t.Fatalf("emote = %+v", emote)
	}
}

func TestWebSocketRoomFull(t *testing.T) {
	_, svc, srv := newTestHub(t)
	roomID, err := svc.CreateRoom(context.Background(), dto.CreateRoomRequest{MaxPlayers: 2, AiCount: 1, UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	dial(t, srv, roomID, "u1")

	other := dial(t, srv, roomID, "u2")
	msg := readUntil(t, other, func(m wsMessage) bool { return true })
	if msg.Type != "error" || msg.Code != "room_full" {
		t.Fatalf("msg = %+v", msg)
	}

	missing := dial(t, srv, "nope", "u3")
	msg = readUntil(t, missing, func(m wsMessage) bool { return true })
	if msg.Type != "error" || msg.Code != "room_not_found" {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestDisconnectMarksOffline(t *testing.T) {
	hub, svc, srv := newTestHub(t)
	roomID, err := svc.CreateRoom(context.Background(), dto.CreateRoomRequest{MaxPlayers: 3, UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	conn := dial(t, srv, roomID, "u1")
	readUntil(t, conn, func(m wsMessage) bool { return m.Type == "sync" })
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.IsOnline(roomID, "u1") {
		if time.Now().After(deadline) {
			t.Fatal("u1 still online after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// 重连保留座位
	again := dial(t, srv, roomID, "u1")
	hello := readUntil(t, again, func(m wsMessage) bool { return m.Type == "init" })
	if hello.Seat != 0 {
		t.Fatalf("seat after reconnect = %d", hello.Seat)
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	hub, svc, srv := newTestHub(t)
	roomID, err := svc.CreateRoom(context.Background(), dto.CreateRoomRequest{MaxPlayers: 2, AiCount: 1, UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	info, err := svc.View(context.Background(), roomID, "")
	if err != nil {
		t.Fatal(err)
	}
	aiID := info.Seats[0].PlayerID

	for _, query := range []string{
		"roomID=" + roomID + "&userID=u1",
		"roomID=" + roomID + "&userID=" + aiID,
		"roomID=" + roomID + "&token=garbage",
	} {
		conn := dialQuery(t, srv, query)
		msg := readUntil(t, conn, func(m wsMessage) bool { return true })
		if msg.Type != "error" || msg.Code != "unauthorized" {
			t.Fatalf("%s: msg = %+v", query, msg)
		}
	}
	if hub.IsOnline(roomID, "u1") {
		t.Fatal("unauthenticated dial must not take a seat")
	}

	// 冒充 AI 座位也不行
	fake := dial(t, srv, roomID, aiID)
	msg := readUntil(t, fake, func(m wsMessage) bool { return true })
	if msg.Type != "error" || msg.Code != "invalid_params" {
		t.Fatalf("ai seat msg = %+v", msg)
	}
}

func TestDeleteRoomClosesConnections(t *testing.T) {
	hub, svc, srv := newTestHub(t)
	ctx := context.Background()
	roomID, err := svc.CreateRoom(ctx, dto.CreateRoomRequest{MaxPlayers: 3, UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	conn := dial(t, srv, roomID, "u1")
	readUntil(t, conn, func(m wsMessage) bool { return m.Type == "sync" })

	if err := svc.DeleteRoom(ctx, dto.DeleteRoomRequest{RoomID: roomID}, "u1"); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			t.Fatal("connection still open after delete")
		}
		break
	}
	if hub.IsOnline(roomID, "u1") {
		t.Fatal("deleted room still tracked")
	}
}

type brokenConn struct{}

func (brokenConn) WriteMessage(int, []byte) error { return errors.New("broken pipe") }
func (brokenConn) Close() error                   { return nil }

func TestSendInitLogsWriteError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	if sendInit(brokenConn{}, "r1", "u1", 0) {
		t.Fatal("sendInit should report the failed write")
	}
	entries := logs.FilterMessage("❌ 发送初始化消息失败").All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %v", logs.All())
	}
	fields := entries[0].ContextMap()
	if fields["roomID"] != "r1" || fields["playerID"] != "u1" || fields["error"] != "broken pipe" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestDecodeMove(t *testing.T) {
	req, err := decodeMove(dto.ActionAttack, "7S")
	if err != nil || req.Card != "7S" || req.Action != dto.ActionAttack {
		t.Fatalf("string payload = %+v, %v", req, err)
	}
	req, err = decodeMove(dto.ActionDefend, map[string]interface{}{"card": "QH", "action": "attack"})
	if err != nil || req.Card != "QH" || req.Action != dto.ActionDefend {
		t.Fatalf("map payload = %+v, %v", req, err)
	}
	if _, err := decodeMove(dto.ActionDefend, 42); err == nil {
		t.Fatal("number payload should fail")
	}
	req, err = decodeMove(dto.ActionPickUp, nil)
	if err != nil || req.Action != dto.ActionPickUp {
		t.Fatalf("nil payload = %+v, %v", req, err)
	}
}

func TestDurationUntilNext4AM(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		now  time.Time
		want time.Duration
	}{
		{time.Date(2024, 5, 1, 3, 0, 0, 0, loc), time.Hour},
		{time.Date(2024, 5, 1, 4, 0, 0, 0, loc), 24 * time.Hour},
		{time.Date(2024, 5, 1, 23, 30, 0, 0, loc), 4*time.Hour + 30*time.Minute},
	}
	for _, tc := range cases {
		if got := durationUntilNext4AM(tc.now); got != tc.want {
			t.Errorf("durationUntilNext4AM(%v) = %v, want %v", tc.now, got, tc.want)
		}
	}
}
