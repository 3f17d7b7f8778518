package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"go-durak/durak"
	"go-durak/entities"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRoomInfoRoundTrip(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	info := entities.RoomInfo{
		RoomID:     "abcd1234",
		UserID:     "u1",
		MaxPlayers: 3,
		AICount:    1,
		Strategy:   "greedy",
		Seed:       1 << 40,
		Round:      2,
		RoomStatus: entities.RoomStatusPlaying,
		Players:    []string{"ai_x", "u1", "u2"},
		CreatedAt:  1700000000000,
	}
	if err := SetRoomInfo(ctx, rdb, info); err != nil {
		t.Fatal(err)
	}
	got, err := GetRoomInfo(ctx, rdb, "abcd1234")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(*got, info) {
		t.Fatalf("got %+v\nwant %+v", *got, info)
	}

	ids, err := ListRoomIDs(ctx, rdb)
	if err != nil || len(ids) != 1 || ids[0] != "abcd1234" {
		t.Fatalf("ids = %v, %v", ids, err)
	}

	if _, err := GetRoomInfo(ctx, rdb, "missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing room err = %v", err)
	}
}

func TestEmptyPlayersDecode(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	if err := SetRoomInfo(ctx, rdb, entities.RoomInfo{RoomID: "r1", MaxPlayers: 2}); err != nil {
		t.Fatal(err)
	}
	got, err := GetRoomInfo(ctx, rdb, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Players) != 0 {
		t.Fatalf("players = %v", got.Players)
	}
}

func TestSnapshotStore(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	if snap, err := LoadSnapshot(ctx, rdb, "r1"); err != nil || snap != nil {
		t.Fatalf("missing snapshot = %v, %v", snap, err)
	}

	rules := durak.DefaultRuleset()
	rules.Seed = 9
	e, err := durak.NewGame(2, rules)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := durak.PlayAI(e, 0, durak.GreedyWeakest{}); err != nil {
		t.Fatal(err)
	}
	if err := SaveSnapshot(ctx, rdb, "r1", e.Snapshot()); err != nil {
		t.Fatal(err)
	}
	snap, err := LoadSnapshot(ctx, rdb, "r1")
	if err != nil {
		t.Fatal(err)
	}
	restored, err := durak.Restore(*snap)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(restored.State(), e.State()) {
		t.Fatal("restored state differs")
	}
}

func TestDeleteRoomByPrefix(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	if err := SetRoomInfo(ctx, rdb, entities.RoomInfo{RoomID: "r1", MaxPlayers: 2}); err != nil {
		t.Fatal(err)
	}
	if err := rdb.Set(ctx, "room:r1:snapshot", "{}", 0).Err(); err != nil {
		t.Fatal(err)
	}
	if err := SetRoomInfo(ctx, rdb, entities.RoomInfo{RoomID: "r2", MaxPlayers: 2}); err != nil {
		t.Fatal(err)
	}

	if err := DeleteRoom(ctx, rdb, "r1"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("room:r1:roomInfo") || mr.Exists("room:r1:snapshot") {
		t.Fatal("room keys not deleted")
	}
	if !mr.Exists("room:r2:roomInfo") {
		t.Fatal("other room deleted")
	}
	if ok, _ := mr.SIsMember("rooms", "r1"); ok {
		t.Fatal("room id still registered")
	}
	if err := DeleteRoom(ctx, rdb, "r1"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestDeleteRoomIgnoresGlobPatterns(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	for _, id := range []string{"a1", "b2", "c[1]"} {
		if err := SetRoomInfo(ctx, rdb, entities.RoomInfo{RoomID: id, MaxPlayers: 2}); err != nil {
			t.Fatal(err)
		}
	}
	if err := rdb.Set(ctx, "room:c1:snapshot", "{}", 0).Err(); err != nil {
		t.Fatal(err)
	}

	for _, pattern := range []string{"*", "?1", "a*", "[ab]?"} {
		if err := DeleteRoom(ctx, rdb, pattern); !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("DeleteRoom(%q) err = %v", pattern, err)
		}
	}
	for _, id := range []string{"a1", "b2", "c[1]"} {
		if !mr.Exists("room:" + id + ":roomInfo") {
			t.Fatalf("room %s deleted by a pattern", id)
		}
	}

	// 字面量 ID 含有 [] 时只删除自己
	if err := DeleteRoom(ctx, rdb, "c[1]"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("room:c[1]:roomInfo") {
		t.Fatal("room c[1] not deleted")
	}
	if !mr.Exists("room:c1:snapshot") {
		t.Fatal("room c1 deleted by c[1]")
	}
}
