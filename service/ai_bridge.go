// service/ai_bridge.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"go-durak/durak"
)

const defaultRemoteTimeout = 3 * time.Second

// RemoteStrategy 把选牌交给外部 AI 服务：
// POST {action, roomID, playerID, gameState}，返回 {"result": "7S"} 或 {"result": null}。
// 调用失败或返回不合法的牌时使用 Fallback。
type RemoteStrategy struct {
	Endpoint string
	RoomID   string
	PlayerID string
	Client   *http.Client
	Fallback durak.MoveStrategy
}

func NewRemoteStrategy(endpoint, roomID, playerID string, client *http.Client) *RemoteStrategy {
	if client == nil {
		client = &http.Client{Timeout: defaultRemoteTimeout}
	}
	return &RemoteStrategy{
		Endpoint: endpoint,
		RoomID:   roomID,
		PlayerID: playerID,
		Client:   client,
		Fallback: durak.GreedyWeakest{},
	}
}

func (r *RemoteStrategy) ChooseAttackCard(hand, pile []durak.Card, trump durak.Suit) (durak.Card, bool) {
	card, ok, err := r.ask("attack", map[string]interface{}{
		"hand":  hand,
		"pile":  pile,
		"trump": trump,
	})
	if err == nil && ok && !legalAttack(card, hand, pile) {
		err = fmt.Errorf("不能出 %s", card)
	}
	if err != nil {
		zap.L().Warn("⚠️ 外部 AI 进攻决策失败，使用默认策略",
			zap.String("roomID", r.RoomID), zap.String("playerID", r.PlayerID), zap.Error(err))
		return r.Fallback.ChooseAttackCard(hand, pile, trump)
	}
	return card, ok
}

func (r *RemoteStrategy) ChooseDefenseCard(hand []durak.Card, attack durak.Card, trump durak.Suit) (durak.Card, bool) {
	card, ok, err := r.ask("defend", map[string]interface{}{
		"hand":   hand,
		"attack": attack,
		"trump":  trump,
	})
	if err == nil && ok && (!containsCard(hand, card) || !durak.Beats(card, attack, trump)) {
		err = fmt.Errorf("%s 压不住 %s", card, attack)
	}
	if err != nil {
		zap.L().Warn("⚠️ 外部 AI 防守决策失败，使用默认策略",
			zap.String("roomID", r.RoomID), zap.String("playerID", r.PlayerID), zap.Error(err))
		return r.Fallback.ChooseDefenseCard(hand, attack, trump)
	}
	return card, ok
}

func (r *RemoteStrategy) ask(action string, gameState map[string]interface{}) (durak.Card, bool, error) {
	payload := map[string]interface{}{
		"action":    action,
		"roomID":    r.RoomID,
		"playerID":  r.PlayerID,
		"gameState": gameState,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return durak.Card{}, false, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRemoteTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return durak.Card{}, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return durak.Card{}, false, fmt.Errorf("调用外部 AI 服务失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return durak.Card{}, false, fmt.Errorf("外部 AI 服务返回状态码 %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return durak.Card{}, false, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return durak.Card{}, false, fmt.Errorf("外部 AI 返回数据解析失败: %w", err)
	}

	val, ok := result["result"]
	if !ok {
		return durak.Card{}, false, fmt.Errorf("外部 AI 没有返回 result 字段")
	}
	if val == nil {
		return durak.Card{}, false, nil
	}
	code, ok := val.(string)
	if !ok {
		return durak.Card{}, false, fmt.Errorf("result 字段类型错误: %T", val)
	}
	card, err := durak.ParseCard(code)
	if err != nil {
		return durak.Card{}, false, err
	}
	return card, true, nil
}

func containsCard(cards []durak.Card, card durak.Card) bool {
	for _, c := range cards {
		if c == card {
			return true
		}
	}
	return false
}

func legalAttack(card durak.Card, hand, pile []durak.Card) bool {
	if !containsCard(hand, card) {
		return false
	}
	if len(pile) == 0 {
		return true
	}
	for _, c := range pile {
		if c.Rank == card.Rank {
			return true
		}
	}
	return false
}
