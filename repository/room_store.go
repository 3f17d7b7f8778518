package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/mitchellh/mapstructure"

	"go-durak/durak"
	"go-durak/entities"
)

var ErrRoomNotFound = errors.New("房间不存在")

const roomSetKey = "rooms"

func roomInfoKey(roomID string) string { return fmt.Sprintf("room:%s:roomInfo", roomID) }
func snapshotKey(roomID string) string { return fmt.Sprintf("room:%s:snapshot", roomID) }

// SetRoomInfo 整体写入房间信息，并登记到房间集合
func SetRoomInfo(ctx context.Context, rdb *redis.Client, info entities.RoomInfo) error {
	players, err := json.Marshal(info.Players)
	if err != nil {
		return fmt.Errorf("玩家列表序列化失败: %w", err)
	}
	fields := map[string]interface{}{
		"roomID":     info.RoomID,
		"userID":     info.UserID,
		"maxPlayers": info.MaxPlayers,
		"aiCount":    info.AICount,
		"strategy":   info.Strategy,
		"script":     info.Script,
		"seed":       strconv.FormatUint(info.Seed, 10),
		"round":      info.Round,
		"roomStatus": string(info.RoomStatus),
		"players":    string(players),
		"createdAt":  info.CreatedAt,
	}

	pipe := rdb.TxPipeline()
	pipe.HSet(ctx, roomInfoKey(info.RoomID), fields)
	pipe.SAdd(ctx, roomSetKey, info.RoomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入房间[%s]信息失败: %w", info.RoomID, err)
	}
	return nil
}

// GetRoomInfo 读取房间信息（Hash）
func GetRoomInfo(ctx context.Context, rdb *redis.Client, roomID string) (*entities.RoomInfo, error) {
	data, err := rdb.HGetAll(ctx, roomInfoKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("获取房间[%s]信息失败: %w", roomID, err)
	}
	if len(data) == 0 {
		return nil, ErrRoomNotFound
	}

	var info entities.RoomInfo
	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(jsonStringToSliceHookFunc()),
		WeaklyTypedInput: true,
		Result:           &info,
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("解析房间[%s]信息失败: %w", roomID, err)
	}
	return &info, nil
}

// Hash 里的列表以 JSON 字符串保存
func jsonStringToSliceHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
			return data, nil
		}
		s := data.(string)
		if s == "" || s == "null" {
			return []string{}, nil
		}
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func SaveSnapshot(ctx context.Context, rdb *redis.Client, roomID string, snap durak.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("牌局快照序列化失败: %w", err)
	}
	if err := rdb.Set(ctx, snapshotKey(roomID), data, 0).Err(); err != nil {
		return fmt.Errorf("写入房间[%s]快照失败: %w", roomID, err)
	}
	return nil
}

// LoadSnapshot 房间还没开局时返回 nil, nil
func LoadSnapshot(ctx context.Context, rdb *redis.Client, roomID string) (*durak.Snapshot, error) {
	data, err := rdb.Get(ctx, snapshotKey(roomID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("获取房间[%s]快照失败: %w", roomID, err)
	}
	var snap durak.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("解析房间[%s]快照失败: %w", roomID, err)
	}
	return &snap, nil
}

func ListRoomIDs(ctx context.Context, rdb *redis.Client) ([]string, error) {
	ids, err := rdb.SMembers(ctx, roomSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("获取房间列表失败: %w", err)
	}
	return ids, nil
}

// globEscaper 转义 SCAN MATCH 的通配符，房间 ID 只能按字面匹配
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// DeleteRoom 房间信息存在时，用 SCAN 查找所有以 room:{roomID}: 开头的 key 并删除
func DeleteRoom(ctx context.Context, rdb *redis.Client, roomID string) error {
	n, err := rdb.Exists(ctx, roomInfoKey(roomID)).Result()
	if err != nil {
		return fmt.Errorf("检查房间[%s]失败: %w", roomID, err)
	}
	if n == 0 {
		rdb.SRem(ctx, roomSetKey, roomID)
		return ErrRoomNotFound
	}

	prefix := "room:" + globEscaper.Replace(roomID) + ":"
	var cursor uint64
	keysToDelete := []string{roomInfoKey(roomID), snapshotKey(roomID)}

	for {
		keys, cur, err := rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("扫描房间相关 key 失败: %w", err)
		}
		keysToDelete = append(keysToDelete, keys...)
		cursor = cur
		if cursor == 0 {
			break
		}
	}

	rdb.SRem(ctx, roomSetKey, roomID)
	if _, err := rdb.Del(ctx, keysToDelete...).Result(); err != nil {
		return fmt.Errorf("删除房间相关 key 失败: %w", err)
	}
	return nil
}
