package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"go-durak/durak"
	"go-durak/dto"
	"go-durak/service"
)

const maxEmoteLen = 32

// 消息处理函数类型，返回的错误只发给发送者
type messageHandler func(h *Hub, roomID, playerID string, msgMap map[string]interface{}) error

// 消息处理函数映射
var messageHandlers = map[string]messageHandler{
	"attack":       moveHandler(dto.ActionAttack),
	"defend":       moveHandler(dto.ActionDefend),
	"pick_up":      moveHandler(dto.ActionPickUp),
	"end_attack":   moveHandler(dto.ActionEndAttack),
	"restart_game": handleRestartGameMessage,
	"emote":        handleEmoteMessage,
}

// decodeMove payload 可以是 "7S" 或 {"card": "7S"}
func decodeMove(action dto.MoveAction, payload interface{}) (dto.MoveRequest, error) {
	req := dto.MoveRequest{}
	switch p := payload.(type) {
	case nil:
	case string:
		req.Card = p
	default:
		if err := mapstructure.Decode(p, &req); err != nil {
			return req, fmt.Errorf("%w: %v", service.ErrInvalidParams, err)
		}
	}
	req.Action = action
	return req, nil
}

func moveHandler(action dto.MoveAction) messageHandler {
	return func(h *Hub, roomID, playerID string, msgMap map[string]interface{}) error {
		req, err := decodeMove(action, msgMap["payload"])
		if err != nil {
			return err
		}
		_, err = h.svc.ApplyMove(context.Background(), roomID, playerID, req)
		return err
	}
}

func handleRestartGameMessage(h *Hub, roomID, playerID string, msgMap map[string]interface{}) error {
	return h.svc.RestartGame(context.Background(), roomID, playerID)
}

type emotePayload struct {
	Emote string `mapstructure:"emote"`
}

// handleEmoteMessage 表情只转发给在线玩家，不改变牌局
func handleEmoteMessage(h *Hub, roomID, playerID string, msgMap map[string]interface{}) error {
	var p emotePayload
	switch v := msgMap["payload"].(type) {
	case string:
		p.Emote = v
	default:
		if err := mapstructure.Decode(v, &p); err != nil {
			return fmt.Errorf("%w: %v", service.ErrInvalidParams, err)
		}
	}
	if p.Emote == "" || utf8.RuneCountInString(p.Emote) > maxEmoteLen {
		return fmt.Errorf("%w: 表情为空或过长", service.ErrInvalidParams)
	}
	h.sendToAll(roomID, map[string]interface{}{
		"type":    "emote",
		"from":    playerID,
		"message": p.Emote,
	})
	return nil
}

// errorCode 给客户端的错误分类
func errorCode(err error) string {
	switch {
	case errors.Is(err, durak.ErrInvalidMove):
		return "invalid_move"
	case errors.Is(err, service.ErrInvalidParams):
		return "invalid_params"
	case errors.Is(err, service.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, service.ErrRoomFull):
		return "room_full"
	case errors.Is(err, service.ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, service.ErrGameNotStarted):
		return "not_started"
	case errors.Is(err, service.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, service.ErrNotOwner):
		return "not_owner"
	}
	return "internal"
}

func sendError(conn WriteOnlyConn, err error) {
	msg := map[string]interface{}{
		"type":    "error",
		"code":    errorCode(err),
		"message": err.Error(),
	}
	if werr := writeJSON(conn, msg); werr != nil {
		zap.L().Warn("❌ 发送错误消息失败", zap.Error(werr))
	}
}

// 持续监听客户端消息，处理成功后给房间内每个座位同步
func (h *Hub) listenAndBroadcastMessages(conn ReadWriteConn, roomID, playerID string) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			zap.L().Debug("读取消息失败", zap.String("roomID", roomID), zap.String("playerID", playerID), zap.Error(err))
			break
		}
		msgMap := make(map[string]interface{})
		if err := json.Unmarshal(msg, &msgMap); err != nil {
			sendError(conn, fmt.Errorf("%w: 消息解析失败", service.ErrInvalidParams))
			continue
		}
		msgType, _ := msgMap["type"].(string)
		handler, found := messageHandlers[msgType]
		if !found {
			zap.L().Warn("⚠️ 未知的消息类型", zap.String("type", msgType))
			sendError(conn, fmt.Errorf("%w: 未知的消息类型 %q", service.ErrInvalidParams, msgType))
			continue
		}
		if err := handler(h, roomID, playerID, msgMap); err != nil {
			sendError(conn, err)
			continue
		}
		if msgType != "emote" {
			h.BroadcastToRoom(roomID)
		}
	}
}
