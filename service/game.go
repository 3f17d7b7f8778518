package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-durak/durak"
	"go-durak/dto"
	"go-durak/entities"
)

// ApplyMove 执行玩家操作并返回该玩家的新视图。非法操作返回 durak.ErrInvalidMove
func (s *RoomService) ApplyMove(ctx context.Context, roomID, playerID string, req dto.MoveRequest) (*dto.PlayerView, error) {
	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.info.Seat(playerID)
	if seat < 0 {
		return nil, ErrNotInRoom
	}
	if r.engine == nil || r.info.RoomStatus == entities.RoomStatusWaiting {
		return nil, ErrGameNotStarted
	}

	if err := applyMove(r.engine, seat, req); err != nil {
		zap.L().Debug("操作被拒绝",
			zap.String("roomID", roomID), zap.String("playerID", playerID),
			zap.String("action", string(req.Action)), zap.String("card", req.Card), zap.Error(err))
		return nil, err
	}
	zap.L().Info("玩家操作",
		zap.String("roomID", roomID), zap.String("playerID", playerID), zap.Int("seat", seat),
		zap.String("action", string(req.Action)), zap.String("card", req.Card))

	if err := s.afterMove(ctx, r); err != nil {
		return nil, err
	}
	view := buildView(r, playerID)
	return &view, nil
}

func applyMove(e *durak.Engine, seat int, req dto.MoveRequest) error {
	switch req.Action {
	case dto.ActionAttack, dto.ActionDefend:
		card, err := durak.ParseCard(req.Card)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if req.Action == dto.ActionAttack {
			return e.Attack(seat, card)
		}
		return e.Defend(seat, card)
	case dto.ActionPickUp:
		return e.PickUp(seat)
	case dto.ActionEndAttack:
		return e.EndAttack(seat)
	}
	return fmt.Errorf("%w: 未知操作 %q", ErrInvalidParams, req.Action)
}

// StepAI 轮到 AI 座位时替它走一步，返回是否走了
func (s *RoomService) StepAI(ctx context.Context, roomID string) (bool, error) {
	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	if r.engine == nil || r.info.RoomStatus != entities.RoomStatusPlaying {
		r.mu.Unlock()
		return false, nil
	}
	engine := r.engine
	actor := engine.Actor()
	if actor < 0 || !IsAIPlayer(r.info.Players[actor]) {
		r.mu.Unlock()
		return false, nil
	}
	strategy, ok := r.strategies[actor]
	if !ok {
		strategy = durak.GreedyWeakest{}
	}
	turn, err := engine.TurnFor(actor)
	r.mu.Unlock()
	if err != nil {
		return false, err
	}

	// 远程策略可能很慢，思考期间不占用房间锁
	card, chosen := turn.Ask(strategy)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine != engine || r.info.RoomStatus != entities.RoomStatusPlaying || engine.Actor() != actor {
		zap.L().Info("⏭️ AI 思考期间局面已变化，放弃本次操作", zap.String("roomID", roomID))
		return false, nil
	}
	move, err := durak.PlayChoice(engine, turn, card, chosen)
	if err != nil {
		if errors.Is(err, durak.ErrStaleTurn) {
			return false, nil
		}
		return false, err
	}
	fields := []zap.Field{
		zap.String("roomID", roomID),
		zap.String("playerID", r.info.Players[actor]),
		zap.String("action", string(move.Kind)),
	}
	if move.Card != nil {
		fields = append(fields, zap.String("card", move.Card.Code()))
	}
	zap.L().Info("🤖 AI 执行操作", fields...)

	return true, s.afterMove(ctx, r)
}

// AIActor 返回当前需要行动的 AI 玩家 ID，不是 AI 的回合时返回空
func (s *RoomService) AIActor(ctx context.Context, roomID string) string {
	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine == nil || r.info.RoomStatus != entities.RoomStatusPlaying {
		return ""
	}
	actor := r.engine.Actor()
	if actor < 0 || !IsAIPlayer(r.info.Players[actor]) {
		return ""
	}
	return r.info.Players[actor]
}

func (s *RoomService) afterMove(ctx context.Context, r *room) error {
	if res, over := r.engine.IsGameOver(); over && r.info.RoomStatus != entities.RoomStatusEnd {
		r.info.RoomStatus = entities.RoomStatusEnd
		s.recordResult(ctx, r, res)
	}
	return s.persist(ctx, r)
}

func (s *RoomService) recordResult(ctx context.Context, r *room, res durak.GameResult) {
	view := resultView(r.info, res)
	zap.L().Info("🏁 游戏结束",
		zap.String("roomID", r.info.RoomID),
		zap.String("loser", view.Loser),
		zap.Bool("draw", view.Draw),
		zap.Strings("finishOrder", view.FinishOrder))

	if s.results == nil {
		return
	}
	rec := &entities.GameRecord{
		RoomID:      r.info.RoomID,
		Round:       r.info.Round,
		Players:     append([]string{}, r.info.Players...),
		Loser:       view.Loser,
		Draw:        view.Draw,
		FinishOrder: view.FinishOrder,
		Moves:       r.engine.Moves(),
		CreatedAt:   time.Now().UnixMilli(),
	}
	if err := s.results.SaveResult(ctx, rec); err != nil {
		zap.L().Error("❌ 保存对局记录失败", zap.String("roomID", r.info.RoomID), zap.Error(err))
	}
}

// View 返回 playerID 视角的牌局，不在房间的玩家只能看到公开信息
func (s *RoomService) View(ctx context.Context, roomID, playerID string) (*dto.PlayerView, error) {
	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	view := buildView(r, playerID)
	return &view, nil
}

func buildView(r *room, playerID string) dto.PlayerView {
	seat := r.info.Seat(playerID)
	view := dto.PlayerView{
		RoomID:     r.info.RoomID,
		RoomStatus: r.info.RoomStatus,
		Round:      r.info.Round,
		PlayerID:   playerID,
		Seat:       seat,
		Hand:       []durak.Card{},
		CenterPile: []durak.Card{},
		Attacker:   -1,
		Defender:   -1,
		Actor:      -1,
	}
	if r.engine == nil {
		for i, p := range r.info.Players {
			view.Seats = append(view.Seats, dto.SeatView{Seat: i, PlayerID: p, AI: IsAIPlayer(p)})
		}
		return view
	}

	st := r.engine.State()
	for i, p := range r.info.Players {
		view.Seats = append(view.Seats, dto.SeatView{
			Seat:     i,
			PlayerID: p,
			HandSize: len(st.Hands[i]),
			Out:      st.Out[i],
			AI:       IsAIPlayer(p),
		})
	}
	if seat >= 0 {
		view.Hand = st.Hands[seat]
	}
	trump := st.TrumpCard
	view.TrumpCard = &trump
	view.TrumpSuit = st.TrumpSuit
	view.CenterPile = st.CenterPile
	view.DeckSize = st.DeckSize
	view.Discarded = st.Discarded
	view.Attacker = st.AttackerIndex
	view.Defender = st.DefenderIndex
	view.Actor = st.Actor
	if st.Result != nil {
		rv := resultView(r.info, *st.Result)
		view.Result = &rv
	}
	return view
}

func resultView(info entities.RoomInfo, res durak.GameResult) dto.ResultView {
	rv := dto.ResultView{
		LoserSeat:   res.Loser,
		Draw:        res.Draw,
		FinishOrder: make([]string, 0, len(res.FinishOrder)),
	}
	if res.Loser >= 0 && res.Loser < len(info.Players) {
		rv.Loser = info.Players[res.Loser]
	}
	for _, seat := range res.FinishOrder {
		if seat >= 0 && seat < len(info.Players) {
			rv.FinishOrder = append(rv.FinishOrder, info.Players[seat])
		}
	}
	return rv
}
