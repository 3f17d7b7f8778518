package dto

import (
	"go-durak/durak"
	"go-durak/entities"
)

type MoveAction string

const (
	ActionAttack    MoveAction = "attack"
	ActionDefend    MoveAction = "defend"
	ActionPickUp    MoveAction = "pick_up"
	ActionEndAttack MoveAction = "end_attack"
)

// MoveRequest 玩家操作，attack / defend 需要带上牌面，例如 "7S" 或 "7 of Spades"
type MoveRequest struct {
	Action MoveAction `json:"action" mapstructure:"action" binding:"required"`
	Card   string     `json:"card" mapstructure:"card"`
}

type SeatView struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"playerID"`
	HandSize int    `json:"handSize"`
	Out      bool   `json:"out"`
	AI       bool   `json:"ai"`
}

type ResultView struct {
	Loser       string   `json:"loser"`
	LoserSeat   int      `json:"loserSeat"`
	Draw        bool     `json:"draw"`
	FinishOrder []string `json:"finishOrder"`
}

// PlayerView 单个玩家看到的牌局：只包含自己的手牌
type PlayerView struct {
	RoomID     string              `json:"roomID"`
	RoomStatus entities.RoomStatus `json:"roomStatus"`
	Round      int                 `json:"round"`
	PlayerID   string              `json:"playerID"`
	Seat       int                 `json:"seat"` // 观战者为 -1
	Hand       []durak.Card        `json:"hand"`
	Seats      []SeatView          `json:"seats"`
	CenterPile []durak.Card        `json:"centerPile"`
	TrumpCard  *durak.Card         `json:"trumpCard,omitempty"`
	TrumpSuit  durak.Suit          `json:"trumpSuit,omitempty"`
	DeckSize   int                 `json:"deckSize"`
	Discarded  int                 `json:"discarded"`
	Attacker   int                 `json:"attacker"`
	Defender   int                 `json:"defender"`
	Actor      int                 `json:"actor"`
	Result     *ResultView         `json:"result,omitempty"`
}
