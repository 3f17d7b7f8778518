package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-durak/dto"
	"go-durak/entities"
)

type WriteOnlyConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// 读写接口，供真实客户端连接用，支持读取消息
type ReadWriteConn interface {
	WriteOnlyConn
	ReadMessage() (messageType int, p []byte, err error)
}

var (
	_ WriteOnlyConn = (*VirtualConn)(nil) // 编译期断言实现
	_ ReadWriteConn = (*dto.RealConn)(nil)
)

var errVirtualRead = errors.New("虚拟连接不支持读取")

// VirtualConn AI 座位的连接：收到轮到自己的 sync 时安排一步 AI 操作
type VirtualConn struct {
	PlayerID string
	RoomID   string
	hub      *Hub
}

func (v *VirtualConn) WriteMessage(messageType int, data []byte) error {
	if v.hub != nil {
		v.hub.MaybeRunAIIfNeeded(v.RoomID, data)
	}
	return nil
}

func (v *VirtualConn) ReadMessage() (int, []byte, error) {
	return 0, nil, errVirtualRead
}

func (v *VirtualConn) Close() error {
	return nil
}

type syncMessage struct {
	Type     string         `json:"type"`
	PlayerID string         `json:"playerID"`
	Data     dto.PlayerView `json:"data"`
}

// MaybeRunAIIfNeeded 解析发给 AI 的 sync，该 AI 需要行动时延迟执行一步
func (h *Hub) MaybeRunAIIfNeeded(roomID string, data []byte) bool {
	var msg syncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		zap.L().Warn("❌ AI 消息格式错误", zap.Error(err))
		return false
	}
	if msg.Type != "sync" || msg.Data.RoomStatus != entities.RoomStatusPlaying {
		return false
	}
	if msg.Data.Seat < 0 || msg.Data.Seat != msg.Data.Actor {
		return false
	}

	h.mu.Lock()
	if h.aiPending[roomID] {
		h.mu.Unlock()
		return false
	}
	h.aiPending[roomID] = true
	h.mu.Unlock()

	zap.L().Debug("🤖 轮到 AI 玩家，准备延迟执行",
		zap.String("roomID", roomID), zap.String("playerID", msg.PlayerID), zap.Duration("delay", h.aiDelay))

	go func() {
		time.Sleep(h.aiDelay)
		h.mu.Lock()
		delete(h.aiPending, roomID)
		h.mu.Unlock()

		moved, err := h.svc.StepAI(context.Background(), roomID)
		if err != nil {
			zap.L().Error("❌ AI 执行失败", zap.String("roomID", roomID), zap.Error(err))
			return
		}
		if moved {
			h.BroadcastToRoom(roomID)
		}
	}()
	return true
}
