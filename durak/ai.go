package durak

// Turn 轮到某个玩家时它能看到的局面，副本可以在引擎锁外交给策略
type Turn struct {
	Player    int
	Defending bool
	Hand      []Card
	Pile      []Card
	Trump     Suit
	moves     int
}

// TurnFor 返回 player 当前的决策局面，还没轮到该玩家时返回错误
func (e *Engine) TurnFor(player int) (Turn, error) {
	if err := e.checkSeat("ai", player); err != nil {
		return Turn{}, err
	}
	defending := player == e.defender && len(e.pile)%2 == 1
	if !defending && !(player == e.attacker && len(e.pile)%2 == 0) {
		return Turn{}, reject("ai", player, "还没有轮到该玩家")
	}
	return Turn{
		Player:    player,
		Defending: defending,
		Hand:      e.Hand(player),
		Pile:      e.CenterPile(),
		Trump:     e.trump,
		moves:     len(e.moves),
	}, nil
}

// Ask 让策略在这个局面下选一张牌
func (t Turn) Ask(s MoveStrategy) (Card, bool) {
	if t.Defending {
		return s.ChooseDefenseCard(t.Hand, t.Pile[len(t.Pile)-1], t.Trump)
	}
	return s.ChooseAttackCard(t.Hand, t.Pile, t.Trump)
}

// PlayChoice 执行策略的选择：防守方压牌或收牌，进攻方出牌或结束进攻。
// 选择不合法时退回到收牌 / 结束进攻；局面在 TurnFor 之后变过则返回 ErrStaleTurn。
func PlayChoice(e *Engine, t Turn, card Card, ok bool) (Move, error) {
	if e.result != nil || len(e.moves) != t.moves {
		return Move{}, ErrStaleTurn
	}
	player := t.Player

	if t.Defending {
		if ok {
			if err := e.Defend(player, card); err == nil {
				return Move{Kind: MoveDefend, Player: player, Card: &card}, nil
			}
		}
		if err := e.PickUp(player); err != nil {
			return Move{}, err
		}
		return Move{Kind: MovePickUp, Player: player}, nil
	}

	if ok {
		if err := e.Attack(player, card); err == nil {
			return Move{Kind: MoveAttack, Player: player, Card: &card}, nil
		}
	}
	if len(e.pile) > 0 {
		if err := e.EndAttack(player); err != nil {
			return Move{}, err
		}
		return Move{Kind: MoveEndAttack, Player: player}, nil
	}
	// 首攻不能放弃
	legal := e.LegalAttacks(player)
	if len(legal) == 0 {
		return Move{}, reject("ai", player, "没有可以出的牌")
	}
	first := legal[0]
	if err := e.Attack(player, first); err != nil {
		return Move{}, err
	}
	return Move{Kind: MoveAttack, Player: player, Card: &first}, nil
}

// PlayAI 让 player 按策略走一步，只要轮到该玩家总能走出一步
func PlayAI(e *Engine, player int, s MoveStrategy) (Move, error) {
	t, err := e.TurnFor(player)
	if err != nil {
		return Move{}, err
	}
	card, ok := t.Ask(s)
	return PlayChoice(e, t, card, ok)
}
