package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-durak/durak"
	"go-durak/dto"
	"go-durak/entities"
	"go-durak/repository"
	"go-durak/scripting"
	"go-durak/utils"
)

const (
	StrategyScript = "script"
	StrategyRemote = "remote"

	MaxListedRooms = 100
)

var (
	ErrRoomNotFound   = repository.ErrRoomNotFound
	ErrRoomFull       = errors.New("房间已满")
	ErrNotInRoom      = errors.New("玩家不在房间中")
	ErrGameNotStarted = errors.New("游戏还没有开始")
	ErrInvalidParams  = errors.New("参数错误")
	ErrNotOwner       = errors.New("只有房主可以删除房间")
	ErrUnauthorized   = errors.New("未登录")
)

// Presence 查询玩家是否在线，由 ws 层提供。CloseRoom 在房间删除后断开该房间的连接
type Presence interface {
	IsOnline(roomID, playerID string) bool
	OnlineCount() int
	CloseRoom(roomID string)
}

type Options struct {
	AIEndpoint string
	HTTPClient *http.Client
}

// RoomService 管理所有房间的牌局，状态写入 Redis，结束的牌局归档到结果库
type RoomService struct {
	rdb      *redis.Client
	results  *repository.ResultStore
	opts     Options
	presence Presence

	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	mu         sync.Mutex
	info       entities.RoomInfo
	engine     *durak.Engine
	strategies map[int]durak.MoveStrategy
}

// NewRoomService results 为 nil 时不归档对局结果
func NewRoomService(rdb *redis.Client, results *repository.ResultStore, opts Options) *RoomService {
	return &RoomService{
		rdb:     rdb,
		results: results,
		opts:    opts,
		rooms:   make(map[string]*room),
	}
}

func (s *RoomService) SetPresence(p Presence) {
	s.presence = p
}

func (s *RoomService) CreateRoom(ctx context.Context, params dto.CreateRoomRequest) (string, error) {
	if params.UserID == "" || IsAIPlayer(params.UserID) {
		return "", fmt.Errorf("%w: 非法的房主 ID %q", ErrInvalidParams, params.UserID)
	}
	if err := durak.DefaultRuleset().Validate(params.MaxPlayers); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if params.AiCount < 0 || params.AiCount >= params.MaxPlayers {
		return "", fmt.Errorf("%w: AI 数量必须在 0 到 %d 之间", ErrInvalidParams, params.MaxPlayers-1)
	}
	strategy := strings.ToLower(params.Strategy)
	if strategy == "" {
		strategy = durak.StrategyGreedy
	}
	if strategy == StrategyScript {
		// 没有 AI 座位时也要保证脚本可用，重新开局时才不会出错
		if _, err := scripting.New(params.Script, 0); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
	}

	// 生成唯一 Room ID（例如 8位）
	uuidStr := uuid.New().String()
	roomID := strings.ReplaceAll(uuidStr, "-", "")[:8]

	r := &room{
		info: entities.RoomInfo{
			RoomID:     roomID,
			UserID:     params.UserID,
			MaxPlayers: params.MaxPlayers,
			AICount:    params.AiCount,
			Strategy:   strategy,
			Script:     params.Script,
			Seed:       params.Seed,
			RoomStatus: entities.RoomStatusWaiting,
			Players:    []string{},
			CreatedAt:  time.Now().UnixMilli(),
		},
		strategies: make(map[int]durak.MoveStrategy),
	}
	for i := 0; i < params.AiCount; i++ {
		r.info.Players = append(r.info.Players, newAIPlayerID())
	}
	if err := s.buildStrategies(r); err != nil {
		return "", err
	}

	if err := repository.SetRoomInfo(ctx, s.rdb, r.info); err != nil {
		return "", fmt.Errorf("初始化房间信息失败: %w", err)
	}
	s.mu.Lock()
	s.rooms[roomID] = r
	s.mu.Unlock()

	zap.L().Info("✅ 房间创建成功",
		zap.String("roomID", roomID),
		zap.String("userID", params.UserID),
		zap.Int("maxPlayers", params.MaxPlayers),
		zap.Int("aiCount", params.AiCount),
		zap.String("strategy", strategy))
	return roomID, nil
}

func (s *RoomService) buildStrategies(r *room) error {
	for seat, playerID := range r.info.Players {
		if !IsAIPlayer(playerID) {
			continue
		}
		strategy, err := s.newStrategy(r.info, playerID)
		if err != nil {
			return err
		}
		r.strategies[seat] = strategy
	}
	return nil
}

func (s *RoomService) newStrategy(info entities.RoomInfo, playerID string) (durak.MoveStrategy, error) {
	switch info.Strategy {
	case StrategyScript:
		strategy, err := scripting.New(info.Script, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		return strategy, nil
	case StrategyRemote:
		if s.opts.AIEndpoint == "" {
			return nil, fmt.Errorf("%w: 没有配置 AI_ENDPOINT", ErrInvalidParams)
		}
		return NewRemoteStrategy(s.opts.AIEndpoint, info.RoomID, playerID, s.opts.HTTPClient), nil
	}
	strategy, err := durak.StrategyByName(info.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return strategy, nil
}

// loadRoom 先查内存，没有时从 Redis 恢复（服务重启之后）
func (s *RoomService) loadRoom(ctx context.Context, roomID string) (*room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[roomID]; ok {
		return r, nil
	}

	info, err := repository.GetRoomInfo(ctx, s.rdb, roomID)
	if err != nil {
		return nil, err
	}
	r := &room{info: *info, strategies: make(map[int]durak.MoveStrategy)}
	if err := s.buildStrategies(r); err != nil {
		return nil, err
	}
	snap, err := repository.LoadSnapshot(ctx, s.rdb, roomID)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		if r.engine, err = durak.Restore(*snap); err != nil {
			return nil, fmt.Errorf("恢复房间[%s]牌局失败: %w", roomID, err)
		}
	}
	s.rooms[roomID] = r
	zap.L().Info("♻️ 从 Redis 恢复房间", zap.String("roomID", roomID), zap.Bool("started", r.engine != nil))
	return r, nil
}

// JoinRoom 玩家入座并返回座位号，已在房间内视为重连
func (s *RoomService) JoinRoom(ctx context.Context, roomID, playerID string) (int, error) {
	if playerID == "" || IsAIPlayer(playerID) {
		return -1, fmt.Errorf("%w: 非法的玩家 ID %q", ErrInvalidParams, playerID)
	}
	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return -1, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if seat := r.info.Seat(playerID); seat >= 0 {
		zap.L().Info("玩家重连", zap.String("roomID", roomID), zap.String("playerID", playerID), zap.Int("seat", seat))
		return seat, nil
	}
	if r.info.IsFull() {
		return -1, ErrRoomFull
	}

	r.info.Players = append(r.info.Players, playerID)
	seat := len(r.info.Players) - 1
	zap.L().Info("玩家加入房间",
		zap.String("roomID", roomID), zap.String("playerID", playerID),
		zap.Int("seat", seat), zap.Int("players", len(r.info.Players)), zap.Int("maxPlayers", r.info.MaxPlayers))

	if r.info.IsFull() {
		if err := s.startGame(r); err != nil {
			r.info.Players = r.info.Players[:seat]
			return -1, err
		}
	}
	if err := s.persist(ctx, r); err != nil {
		return -1, err
	}
	return seat, nil
}

func (s *RoomService) startGame(r *room) error {
	rules := durak.DefaultRuleset()
	if r.info.Seed != 0 {
		rules.Seed = r.info.Seed + uint64(r.info.Round)
	}
	engine, err := durak.NewGame(len(r.info.Players), rules)
	if err != nil {
		return err
	}
	r.engine = engine
	r.info.RoomStatus = entities.RoomStatusPlaying
	zap.L().Info("🃏 游戏开始",
		zap.String("roomID", r.info.RoomID),
		zap.Int("round", r.info.Round),
		zap.String("trump", engine.TrumpCard().String()))
	return nil
}

func (s *RoomService) persist(ctx context.Context, r *room) error {
	if err := repository.SetRoomInfo(ctx, s.rdb, r.info); err != nil {
		return err
	}
	if r.engine != nil {
		return repository.SaveSnapshot(ctx, s.rdb, r.info.RoomID, r.engine.Snapshot())
	}
	return nil
}

// RestartGame 同一房间、同一批玩家重新开一局
func (s *RoomService) RestartGame(ctx context.Context, roomID, playerID string) error {
	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.info.Seat(playerID) < 0 {
		return ErrNotInRoom
	}
	if r.info.RoomStatus == entities.RoomStatusWaiting {
		return ErrGameNotStarted
	}
	r.info.Round++
	if err := s.startGame(r); err != nil {
		return err
	}
	zap.L().Info("🔄 重新开始游戏", zap.String("roomID", roomID), zap.String("playerID", playerID))
	return s.persist(ctx, r)
}

// DeleteRoom 只有房主可以删除房间
func (s *RoomService) DeleteRoom(ctx context.Context, params dto.DeleteRoomRequest, userID string) error {
	info, err := s.roomInfo(ctx, params.RoomID)
	if err != nil {
		return err
	}
	if info.UserID != userID {
		return ErrNotOwner
	}
	return s.deleteRoom(ctx, params.RoomID)
}

func (s *RoomService) deleteRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	delete(s.rooms, roomID)
	s.mu.Unlock()
	if err := repository.DeleteRoom(ctx, s.rdb, roomID); err != nil {
		return err
	}
	if s.presence != nil {
		s.presence.CloseRoom(roomID)
	}
	zap.L().Info("🗑️ 房间已删除", zap.String("roomID", roomID))
	return nil
}

func (s *RoomService) GetRoomList(ctx context.Context) ([]dto.RoomInfo, error) {
	ids, err := repository.ListRoomIDs(ctx, s.rdb)
	if err != nil {
		return nil, err
	}

	infos := make([]entities.RoomInfo, 0, len(ids))
	for _, roomID := range ids {
		info, err := s.roomInfo(ctx, roomID)
		if errors.Is(err, ErrRoomNotFound) {
			// 集合里残留的房间 ID
			_ = repository.DeleteRoom(ctx, s.rdb, roomID)
			continue
		}
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt > infos[j].CreatedAt
	})

	rooms := make([]dto.RoomInfo, 0, len(infos))
	for _, info := range utils.SafeSlice(infos, MaxListedRooms) {
		roomPlayers := make([]dto.RoomPlayer, 0, len(info.Players))
		for _, playerID := range info.Players {
			roomPlayers = append(roomPlayers, dto.RoomPlayer{
				PlayerID: playerID,
				Online:   s.isOnline(info.RoomID, playerID),
				AI:       IsAIPlayer(playerID),
			})
		}
		rooms = append(rooms, dto.RoomInfo{
			RoomID:     info.RoomID,
			UserID:     info.UserID,
			MaxPlayers: info.MaxPlayers,
			Status:     string(info.RoomStatus),
			Strategy:   info.Strategy,
			RoomPlayer: roomPlayers,
		})
	}
	return rooms, nil
}

// roomInfo 内存中有的房间以内存为准
func (s *RoomService) roomInfo(ctx context.Context, roomID string) (entities.RoomInfo, error) {
	s.mu.Lock()
	r, ok := s.rooms[roomID]
	s.mu.Unlock()
	if ok {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.info, nil
	}
	info, err := repository.GetRoomInfo(ctx, s.rdb, roomID)
	if err != nil {
		return entities.RoomInfo{}, err
	}
	return *info, nil
}

func (s *RoomService) isOnline(roomID, playerID string) bool {
	if IsAIPlayer(playerID) {
		return true
	}
	return s.presence != nil && s.presence.IsOnline(roomID, playerID)
}

func (s *RoomService) GetOnlinePlayer() int {
	if s.presence == nil {
		return 0
	}
	return s.presence.OnlineCount()
}

// CleanupFinished 删除所有已结束的房间，返回被删除的房间 ID
func (s *RoomService) CleanupFinished(ctx context.Context) ([]string, error) {
	ids, err := repository.ListRoomIDs(ctx, s.rdb)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, roomID := range ids {
		info, err := s.roomInfo(ctx, roomID)
		if err != nil && !errors.Is(err, ErrRoomNotFound) {
			return removed, err
		}
		if err == nil && info.RoomStatus != entities.RoomStatusEnd {
			continue
		}
		if err := s.deleteRoom(ctx, roomID); err != nil && !errors.Is(err, ErrRoomNotFound) {
			return removed, err
		}
		removed = append(removed, roomID)
	}
	zap.L().Info("🧹 清理已结束的房间", zap.Int("count", len(removed)))
	return removed, nil
}
