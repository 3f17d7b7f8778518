package durak

// MoveKind 操作类型
type MoveKind string

const (
	MoveAttack    MoveKind = "attack"
	MoveDefend    MoveKind = "defend"
	MovePickUp    MoveKind = "pick_up"
	MoveEndAttack MoveKind = "end_attack"
)

// Move 一次被接受的操作，PickUp / EndAttack 没有牌
type Move struct {
	Kind   MoveKind `json:"kind"`
	Player int      `json:"player"`
	Card   *Card    `json:"card,omitempty"`
}

// GameResult 游戏结果。Loser 为 -1 时表示平局（最后两人同时出完）
type GameResult struct {
	Loser       int   `json:"loser"`
	Draw        bool  `json:"draw"`
	FinishOrder []int `json:"finishOrder"`
}

// State 只读快照，供展示层渲染
type State struct {
	NumPlayers    int         `json:"numPlayers"`
	Hands         [][]Card    `json:"hands"`
	DeckSize      int         `json:"deckSize"`
	TrumpSuit     Suit        `json:"trumpSuit"`
	TrumpCard     Card        `json:"trumpCard"`
	CenterPile    []Card      `json:"centerPile"`
	Discarded     int         `json:"discarded"`
	AttackerIndex int         `json:"attackerIndex"`
	DefenderIndex int         `json:"defenderIndex"`
	RoundOpen     bool        `json:"roundOpen"`
	Attacks       int         `json:"attacks"`
	Out           []bool      `json:"out"`
	Actor         int         `json:"actor"`
	Result        *GameResult `json:"result,omitempty"`
}

// Engine 杜拉克（傻瓜牌）规则引擎，单线程使用
type Engine struct {
	rules Ruleset

	deck      []Card // deck[0] 是牌堆顶，王牌压在最底
	hands     [][]Card
	pile      []Card
	discard   []Card
	trumpCard Card
	trump     Suit

	attacker  int
	defender  int
	attacks   int
	roundOpen bool

	out         []bool
	finishOrder []int
	result      *GameResult
	moves       []Move
}

// NewGame 创建并洗好一副牌，发牌并翻出王牌
func NewGame(numPlayers int, rules Ruleset) (*Engine, error) {
	if err := rules.Validate(numPlayers); err != nil {
		return nil, err
	}
	deck := NewDeck(rules)
	if !rules.NoShuffle {
		shuffle(deck, rules.Seed)
	}
	return newEngine(numPlayers, rules, deck), nil
}

// NewGameFromDeck 使用给定的牌序（deck[0] 为牌堆顶），不再洗牌
func NewGameFromDeck(numPlayers int, rules Ruleset, deck []Card) (*Engine, error) {
	if err := rules.Validate(numPlayers); err != nil {
		return nil, err
	}
	if err := checkFullDeck(rules, deck); err != nil {
		return nil, err
	}
	return newEngine(numPlayers, rules, cloneCards(deck)), nil
}

func newEngine(numPlayers int, rules Ruleset, deck []Card) *Engine {
	e := &Engine{
		rules: rules,
		deck:  deck,
		hands: make([][]Card, numPlayers),
		out:   make([]bool, numPlayers),
	}
	for i := range e.hands {
		e.hands[i] = make([]Card, 0, rules.HandSize)
		e.fill(i)
	}

	// 翻出王牌后压到牌堆最底
	e.trumpCard = e.deck[0]
	e.trump = e.trumpCard.Suit
	e.deck = append(cloneCards(e.deck[1:]), e.trumpCard)

	e.attacker, e.defender = 0, 1
	return e
}

func (e *Engine) fill(player int) {
	for len(e.hands[player]) < e.rules.HandSize && len(e.deck) > 0 {
		e.hands[player] = append(e.hands[player], e.deck[0])
		e.deck = e.deck[1:]
	}
}

func (e *Engine) Rules() Ruleset { return e.rules }
func (e *Engine) NumPlayers() int { return len(e.hands) }
func (e *Engine) Trump() Suit { return e.trump }
func (e *Engine) TrumpCard() Card { return e.trumpCard }
func (e *Engine) AttackerIndex() int { return e.attacker }
func (e *Engine) DefenderIndex() int { return e.defender }

// Actor 返回下一步应该操作的玩家；游戏结束时返回 -1
func (e *Engine) Actor() int {
	if e.result != nil {
		return -1
	}
	if len(e.pile)%2 == 1 {
		return e.defender
	}
	return e.attacker
}

// Hand 返回玩家手牌的副本
func (e *Engine) Hand(player int) []Card {
	if player < 0 || player >= len(e.hands) {
		return nil
	}
	return cloneCards(e.hands[player])
}

func (e *Engine) CenterPile() []Card { return cloneCards(e.pile) }

func (e *Engine) Moves() []Move {
	out := make([]Move, len(e.moves))
	copy(out, e.moves)
	return out
}

// IsGameOver 游戏结束时返回结果
func (e *Engine) IsGameOver() (GameResult, bool) {
	if e.result == nil {
		return GameResult{}, false
	}
	return e.result.clone(), true
}

func (r GameResult) clone() GameResult {
	r.FinishOrder = append([]int{}, r.FinishOrder...)
	return r
}

func (e *Engine) State() State {
	hands := make([][]Card, len(e.hands))
	for i, h := range e.hands {
		hands[i] = cloneCards(h)
	}
	s := State{
		NumPlayers:    len(e.hands),
		Hands:         hands,
		DeckSize:      len(e.deck),
		TrumpSuit:     e.trump,
		TrumpCard:     e.trumpCard,
		CenterPile:    cloneCards(e.pile),
		Discarded:     len(e.discard),
		AttackerIndex: e.attacker,
		DefenderIndex: e.defender,
		RoundOpen:     e.roundOpen,
		Attacks:       e.attacks,
		Out:           append([]bool{}, e.out...),
		Actor:         e.Actor(),
	}
	if e.result != nil {
		r := e.result.clone()
		s.Result = &r
	}
	return s
}

func (e *Engine) checkSeat(op string, player int) error {
	if e.result != nil {
		return reject(op, player, "游戏已结束")
	}
	if player < 0 || player >= len(e.hands) {
		return reject(op, player, "玩家不存在")
	}
	return nil
}

// Attack 进攻方出一张牌
func (e *Engine) Attack(player int, card Card) error {
	if err := e.checkAttack(player, card); err != nil {
		return err
	}
	idx := indexOf(e.hands[player], card)
	e.hands[player] = removeAt(e.hands[player], idx)
	e.pile = append(e.pile, card)
	e.attacks++
	e.roundOpen = true
	e.record(MoveAttack, player, &card)
	return nil
}

func (e *Engine) checkAttack(player int, card Card) error {
	const op = "attack"
	if err := e.checkSeat(op, player); err != nil {
		return err
	}
	if player != e.attacker {
		return reject(op, player, "不是进攻方")
	}
	if len(e.pile)%2 == 1 {
		return reject(op, player, "上一张进攻牌还没有应对")
	}
	if indexOf(e.hands[player], card) < 0 {
		return reject(op, player, "手中没有 "+card.String())
	}
	if e.attacks >= e.rules.MaxAttacksPerRound {
		return reject(op, player, "本轮进攻已达上限")
	}
	if len(e.hands[e.defender]) == 0 {
		return reject(op, player, "防守方已经没有手牌")
	}
	if len(e.pile) > 0 && e.rules.RequireMatchingRank && !hasRank(e.pile, card.Rank) {
		return reject(op, player, "跟进的牌必须与桌面上的点数相同")
	}
	return nil
}

// Defend 防守方压住最后一张进攻牌
func (e *Engine) Defend(player int, card Card) error {
	const op = "defend"
	if err := e.checkSeat(op, player); err != nil {
		return err
	}
	if player != e.defender {
		return reject(op, player, "不是防守方")
	}
	if len(e.pile)%2 == 0 {
		return reject(op, player, "没有需要应对的进攻牌")
	}
	idx := indexOf(e.hands[player], card)
	if idx < 0 {
		return reject(op, player, "手中没有 "+card.String())
	}
	attack := e.pile[len(e.pile)-1]
	if !Beats(card, attack, e.trump) {
		return reject(op, player, card.String()+" 压不住 "+attack.String())
	}

	e.hands[player] = removeAt(e.hands[player], idx)
	e.pile = append(e.pile, card)
	e.record(MoveDefend, player, &card)

	// 已经不可能继续进攻时自动结束本轮
	if !e.canContinueAttack() {
		e.resolve(false)
	}
	return nil
}

func (e *Engine) canContinueAttack() bool {
	return e.attacks < e.rules.MaxAttacksPerRound &&
		len(e.hands[e.defender]) > 0 &&
		len(e.hands[e.attacker]) > 0
}

// PickUp 防守方收下桌面上所有的牌
func (e *Engine) PickUp(player int) error {
	const op = "pick_up"
	if err := e.checkSeat(op, player); err != nil {
		return err
	}
	if player != e.defender {
		return reject(op, player, "不是防守方")
	}
	if len(e.pile)%2 == 0 {
		return reject(op, player, "没有需要应对的进攻牌")
	}
	e.record(MovePickUp, player, nil)
	e.resolve(true)
	return nil
}

// EndAttack 进攻方放弃继续进攻，桌面牌进入弃牌堆
func (e *Engine) EndAttack(player int) error {
	const op = "end_attack"
	if err := e.checkSeat(op, player); err != nil {
		return err
	}
	if player != e.attacker {
		return reject(op, player, "不是进攻方")
	}
	if len(e.pile) == 0 {
		return reject(op, player, "本轮还没有出牌")
	}
	if len(e.pile)%2 == 1 {
		return reject(op, player, "上一张进攻牌还没有应对")
	}
	e.record(MoveEndAttack, player, nil)
	e.resolve(false)
	return nil
}

func (e *Engine) record(kind MoveKind, player int, card *Card) {
	m := Move{Kind: kind, Player: player}
	if card != nil {
		c := *card
		m.Card = &c
	}
	e.moves = append(e.moves, m)
}

// resolve 结束本轮：清桌、补牌、判定出局、轮换角色
func (e *Engine) resolve(pickedUp bool) {
	if pickedUp {
		e.hands[e.defender] = append(e.hands[e.defender], e.pile...)
	} else {
		e.discard = append(e.discard, e.pile...)
	}
	e.pile = nil
	e.attacks = 0
	e.roundOpen = false

	e.refill()
	e.checkWinner()
	if e.result != nil {
		return
	}
	e.rotate(pickedUp)
}

// refill 从进攻方开始按顺时针补牌
func (e *Engine) refill() {
	n := len(e.hands)
	for k := 0; k < n && len(e.deck) > 0; k++ {
		p := (e.attacker + k) % n
		if !e.out[p] {
			e.fill(p)
		}
	}
}

// checkWinner 牌堆摸完后手牌为空的玩家安全出局，最后还有牌的玩家就是傻瓜
func (e *Engine) checkWinner() {
	if len(e.deck) > 0 || e.result != nil {
		return
	}
	n := len(e.hands)
	for k := 0; k < n; k++ {
		p := (e.attacker + k) % n
		if !e.out[p] && len(e.hands[p]) == 0 {
			e.out[p] = true
			e.finishOrder = append(e.finishOrder, p)
		}
	}

	active := -1
	count := 0
	for p := range e.hands {
		if !e.out[p] {
			active = p
			count++
		}
	}
	switch count {
	case 0:
		e.result = &GameResult{Loser: -1, Draw: true, FinishOrder: append([]int{}, e.finishOrder...)}
	case 1:
		e.result = &GameResult{Loser: active, FinishOrder: append([]int{}, e.finishOrder...)}
	}
}

func (e *Engine) rotate(pickedUp bool) {
	next := e.defender
	if pickedUp || e.out[e.defender] {
		next = e.nextActive(e.defender)
	}
	e.attacker = next
	e.defender = e.nextActive(next)
}

func (e *Engine) nextActive(from int) int {
	n := len(e.hands)
	for k := 1; k <= n; k++ {
		p := (from + k) % n
		if !e.out[p] {
			return p
		}
	}
	return from
}

// LegalAttacks 返回玩家当前可以出的进攻牌
func (e *Engine) LegalAttacks(player int) []Card {
	if player < 0 || player >= len(e.hands) {
		return nil
	}
	var legal []Card
	for _, c := range e.hands[player] {
		if e.checkAttack(player, c) == nil {
			legal = append(legal, c)
		}
	}
	return legal
}

// LegalDefenses 返回能压住最后一张进攻牌的手牌
func (e *Engine) LegalDefenses(player int) []Card {
	if e.checkSeat("defend", player) != nil || player != e.defender || len(e.pile)%2 == 0 {
		return nil
	}
	attack := e.pile[len(e.pile)-1]
	var legal []Card
	for _, c := range e.hands[player] {
		if Beats(c, attack, e.trump) {
			legal = append(legal, c)
		}
	}
	return legal
}

func (e *Engine) CanEndAttack(player int) bool {
	return e.checkSeat("end_attack", player) == nil &&
		player == e.attacker && len(e.pile) > 0 && len(e.pile)%2 == 0
}
