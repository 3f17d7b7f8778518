package entities

import "testing"

func TestRoomInfoSeat(t *testing.T) {
	info := RoomInfo{MaxPlayers: 3, Players: []string{"ai_x", "u1"}}
	if info.Seat("u1") != 1 || info.Seat("nobody") != -1 {
		t.Fatal("Seat")
	}
	if info.IsFull() {
		t.Fatal("room with a free seat reported full")
	}
	info.Players = append(info.Players, "u2")
	if !info.IsFull() {
		t.Fatal("full room not detected")
	}
}
