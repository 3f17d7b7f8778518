package dto

type RoomPlayer struct {
	PlayerID string `json:"playerID"`
	Online   bool   `json:"online"`
	AI       bool   `json:"ai"`
}

type RoomInfo struct {
	RoomID     string       `json:"roomID"`
	UserID     string       `json:"userID"`
	MaxPlayers int          `json:"maxPlayers"`
	Status     string       `json:"status"`
	Strategy   string       `json:"strategy"`
	RoomPlayer []RoomPlayer `json:"roomPlayer"`
}

type CreateRoomRequest struct {
	MaxPlayers int    `json:"maxPlayers" binding:"required"`
	AiCount    int    `json:"aiCount"`
	UserID     string `json:"-"`        // 房主，取自 token
	Strategy   string `json:"strategy"` // greedy / first / script / remote
	Script     string `json:"script"`
	Seed       uint64 `json:"seed"`
}

type DeleteRoomRequest struct {
	RoomID string `json:"roomID" binding:"required"`
}

type CreateRoomResponse struct {
	RoomID string `json:"room_id"`
}

type GetRoomList struct {
	Rooms        []RoomInfo `json:"rooms"`
	OnlinePlayer int        `json:"onlinePlayer"`
}
