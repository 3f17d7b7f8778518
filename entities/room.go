package entities

type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting" // 等待玩家加入房间
	RoomStatusPlaying RoomStatus = "playing"
	RoomStatusEnd     RoomStatus = "end"
)

// RoomInfo 房间信息，保存在 room:{id}:roomInfo
type RoomInfo struct {
	RoomID     string     `json:"roomID" mapstructure:"roomID"`
	UserID     string     `json:"userID" mapstructure:"userID"` // 房主
	MaxPlayers int        `json:"maxPlayers" mapstructure:"maxPlayers"`
	AICount    int        `json:"aiCount" mapstructure:"aiCount"`
	Strategy   string     `json:"strategy" mapstructure:"strategy"`
	Script     string     `json:"-" mapstructure:"script"`
	Seed       uint64     `json:"seed" mapstructure:"seed"`
	Round      int        `json:"round" mapstructure:"round"`
	RoomStatus RoomStatus `json:"roomStatus" mapstructure:"roomStatus"`
	Players    []string   `json:"players" mapstructure:"players"` // 下标即座位号
	CreatedAt  int64      `json:"createdAt" mapstructure:"createdAt"`
}

// Seat 返回玩家的座位号，不在房间内返回 -1
func (r RoomInfo) Seat(playerID string) int {
	for i, p := range r.Players {
		if p == playerID {
			return i
		}
	}
	return -1
}

func (r RoomInfo) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}
