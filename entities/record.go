package entities

import "go-durak/durak"

// GameRecord 一局结束后写入结果库的记录
type GameRecord struct {
	ID          int64        `json:"id"`
	RoomID      string       `json:"roomID"`
	Round       int          `json:"round"`
	Players     []string     `json:"players"`
	Loser       string       `json:"loser"` // 平局时为空
	Draw        bool         `json:"draw"`
	FinishOrder []string     `json:"finishOrder"`
	Moves       []durak.Move `json:"moves"`
	CreatedAt   int64        `json:"createdAt"` // 毫秒时间戳
}
