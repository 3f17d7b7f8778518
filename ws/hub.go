package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"go-durak/dto"
	"go-durak/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub 维护每个房间的连接，AI 座位挂一个虚拟连接
type Hub struct {
	svc     *service.RoomService
	aiDelay time.Duration

	mu        sync.Mutex
	rooms     map[string][]dto.PlayerConn
	aiPending map[string]bool
	announced map[string]int // 已广播 game_over 的局数 + 1
}

var _ service.Presence = (*Hub)(nil)

func NewHub(svc *service.RoomService, aiDelay time.Duration) *Hub {
	return &Hub{
		svc:       svc,
		aiDelay:   aiDelay,
		rooms:     make(map[string][]dto.PlayerConn),
		aiPending: make(map[string]bool),
		announced: make(map[string]int),
	}
}

func (h *Hub) IsOnline(roomID, playerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, pc := range h.rooms[roomID] {
		if pc.PlayerID == playerID {
			return pc.Online
		}
	}
	return false
}

// OnlineCount 在线的真人玩家数
func (h *Hub) OnlineCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	count := 0
	for _, players := range h.rooms {
		for _, pc := range players {
			if pc.Online && !service.IsAIPlayer(pc.PlayerID) {
				count++
			}
		}
	}
	return count
}

// register 加入或重连，重连时关闭旧连接
func (h *Hub) register(roomID, playerID string, conn dto.ConnInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, pc := range h.rooms[roomID] {
		if pc.PlayerID == playerID {
			if pc.Conn != nil && pc.Conn != conn {
				pc.Conn.Close()
			}
			h.rooms[roomID][i].Conn = conn
			h.rooms[roomID][i].Online = true
			zap.L().Info("玩家重连成功", zap.String("roomID", roomID), zap.String("playerID", playerID))
			return
		}
	}
	h.rooms[roomID] = append(h.rooms[roomID], dto.PlayerConn{
		PlayerID: playerID,
		Conn:     conn,
		Online:   true,
	})
}

// ensureAIConns 给房间里的每个 AI 座位挂上虚拟连接
func (h *Hub) ensureAIConns(ctx context.Context, roomID string) {
	view, err := h.svc.View(ctx, roomID, "")
	if err != nil {
		zap.L().Error("❌ 获取房间信息失败", zap.String("roomID", roomID), zap.Error(err))
		return
	}
	for _, seat := range view.Seats {
		if !seat.AI || h.IsOnline(roomID, seat.PlayerID) {
			continue
		}
		h.register(roomID, seat.PlayerID, &VirtualConn{PlayerID: seat.PlayerID, RoomID: roomID, hub: h})
		zap.L().Info("AI 玩家加入房间", zap.String("roomID", roomID), zap.String("playerID", seat.PlayerID))
	}
}

// 玩家断开连接后标记为离线，保留座位等待重连
func (h *Hub) cleanupOnDisconnect(roomID, playerID string, conn dto.ConnInterface) {
	h.mu.Lock()
	for i, pc := range h.rooms[roomID] {
		if pc.PlayerID == playerID {
			if pc.Conn == conn {
				h.rooms[roomID][i].Online = false
				h.rooms[roomID][i].Conn = nil
				zap.L().Info("玩家标记为离线", zap.String("roomID", roomID), zap.String("playerID", playerID))
			}
			break
		}
	}
	h.mu.Unlock()
	h.BroadcastToRoom(roomID)
}

// CloseRoom 房间被删除后断开所有连接并清掉房间状态
func (h *Hub) CloseRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, pc := range h.rooms[roomID] {
		if pc.Conn != nil {
			pc.Conn.Close()
		}
	}
	delete(h.rooms, roomID)
	delete(h.announced, roomID)
	delete(h.aiPending, roomID)
	zap.L().Info("🔌 房间连接已全部断开", zap.String("roomID", roomID))
}

func (h *Hub) onlineConns(roomID string) []dto.PlayerConn {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []dto.PlayerConn
	for _, pc := range h.rooms[roomID] {
		if pc.Online && pc.Conn != nil {
			out = append(out, pc)
		}
	}
	return out
}

func (h *Hub) markOffline(roomID string, conn dto.ConnInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, pc := range h.rooms[roomID] {
		if pc.Conn == conn {
			h.rooms[roomID][i].Online = false
			h.rooms[roomID][i].Conn = nil
		}
	}
}

// BroadcastToRoom 给每个在线座位发送自己视角的 sync，牌局刚结束时再广播 game_over
func (h *Hub) BroadcastToRoom(roomID string) {
	ctx := context.Background()
	var result *dto.ResultView
	round := 0
	for _, pc := range h.onlineConns(roomID) {
		view, err := h.svc.View(ctx, roomID, pc.PlayerID)
		if err != nil {
			zap.L().Error("❌ 获取玩家视图失败", zap.String("roomID", roomID), zap.String("playerID", pc.PlayerID), zap.Error(err))
			return
		}
		result, round = view.Result, view.Round
		msg := map[string]interface{}{
			"type":     "sync",
			"playerID": pc.PlayerID,
			"data":     view,
		}
		if err := writeJSON(pc.Conn, msg); err != nil {
			zap.L().Warn("广播失败，移除连接", zap.String("roomID", roomID), zap.String("playerID", pc.PlayerID), zap.Error(err))
			pc.Conn.Close()
			h.markOffline(roomID, pc.Conn)
		}
	}

	if result == nil {
		return
	}
	h.mu.Lock()
	already := h.announced[roomID] == round+1
	h.announced[roomID] = round + 1
	h.mu.Unlock()
	if !already {
		h.sendToAll(roomID, map[string]interface{}{"type": "game_over", "result": result})
	}
}

func (h *Hub) sendToAll(roomID string, msg map[string]interface{}) {
	for _, pc := range h.onlineConns(roomID) {
		if err := writeJSON(pc.Conn, msg); err != nil {
			zap.L().Warn("❌ 发送消息失败", zap.String("roomID", roomID), zap.String("playerID", pc.PlayerID), zap.Error(err))
		}
	}
}

func writeJSON(conn dto.ConnInterface, msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// 将 HTTP 请求升级为 WebSocket 连接
func upgradeConnection(c *gin.Context) (*websocket.Conn, error) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("WebSocket 升级失败", zap.Error(err))
	}
	return conn, err
}

// sendInit 告诉客户端自己的座位，发送失败时记录日志并返回 false
func sendInit(conn dto.ConnInterface, roomID, playerID string, seat int) bool {
	err := writeJSON(conn, map[string]interface{}{
		"type":     "init",
		"playerID": playerID,
		"seat":     seat,
	})
	if err != nil {
		zap.L().Warn("❌ 发送初始化消息失败", zap.String("roomID", roomID), zap.String("playerID", playerID), zap.Error(err))
		return false
	}
	return true
}

// HandleWebSocket 主入口：/ws?roomID=&token=，玩家身份只取自 token
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgradeConnection(c)
	if err != nil {
		return
	}
	defer conn.Close()
	rc := &dto.RealConn{Conn: conn}

	playerID := c.GetString("userID")
	if playerID == "" {
		sendError(rc, service.ErrUnauthorized)
		return
	}
	roomID := c.Query("roomID")
	if roomID == "" {
		sendError(rc, service.ErrInvalidParams)
		return
	}

	ctx := c.Request.Context()
	seat, err := h.svc.JoinRoom(ctx, roomID, playerID)
	if err != nil {
		sendError(rc, err)
		return
	}
	h.register(roomID, playerID, rc)
	defer h.cleanupOnDisconnect(roomID, playerID, rc)

	if !sendInit(rc, roomID, playerID, seat) {
		return
	}
	h.ensureAIConns(ctx, roomID)
	h.BroadcastToRoom(roomID)
	h.listenAndBroadcastMessages(rc, roomID, playerID)
}
