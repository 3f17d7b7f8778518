package service

import (
	"strings"
	"time"

	"golang.org/x/exp/rand"
)

const aiPrefix = "ai_"

var rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))

func RandString(n int) string {
	letters := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}

func IsAIPlayer(playerID string) bool {
	return strings.HasPrefix(playerID, aiPrefix)
}

func newAIPlayerID() string {
	return aiPrefix + RandString(6)
}

// NewGuestID 游客登录时分配的玩家 ID
func NewGuestID() string {
	return "guest_" + RandString(10)
}
