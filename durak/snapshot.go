package durak

import "fmt"

// Snapshot 引擎完整状态（含牌堆顺序），用于持久化和恢复
type Snapshot struct {
	Rules       Ruleset     `json:"rules"`
	Deck        []Card      `json:"deck"`
	Hands       [][]Card    `json:"hands"`
	Pile        []Card      `json:"pile"`
	Discard     []Card      `json:"discard"`
	TrumpCard   Card        `json:"trumpCard"`
	Attacker    int         `json:"attacker"`
	Defender    int         `json:"defender"`
	Attacks     int         `json:"attacks"`
	RoundOpen   bool        `json:"roundOpen"`
	Out         []bool      `json:"out"`
	FinishOrder []int       `json:"finishOrder"`
	Result      *GameResult `json:"result,omitempty"`
	Moves       []Move      `json:"moves"`
}

func (e *Engine) Snapshot() Snapshot {
	hands := make([][]Card, len(e.hands))
	for i, h := range e.hands {
		hands[i] = cloneCards(h)
	}
	s := Snapshot{
		Rules:       e.rules,
		Deck:        cloneCards(e.deck),
		Hands:       hands,
		Pile:        cloneCards(e.pile),
		Discard:     cloneCards(e.discard),
		TrumpCard:   e.trumpCard,
		Attacker:    e.attacker,
		Defender:    e.defender,
		Attacks:     e.attacks,
		RoundOpen:   e.roundOpen,
		Out:         append([]bool{}, e.out...),
		FinishOrder: append([]int{}, e.finishOrder...),
		Moves:       e.Moves(),
	}
	if e.result != nil {
		r := e.result.clone()
		s.Result = &r
	}
	return s
}

// Restore 从快照恢复引擎，校验所有区域的牌加起来正好是一整副
func Restore(s Snapshot) (*Engine, error) {
	n := len(s.Hands)
	if err := s.Rules.Validate(n); err != nil {
		return nil, err
	}
	if len(s.Out) != n {
		return nil, &ConfigError{Field: "out", Reason: "长度与玩家数不一致"}
	}
	if s.Attacker < 0 || s.Attacker >= n || s.Defender < 0 || s.Defender >= n || s.Attacker == s.Defender {
		return nil, &ConfigError{Field: "roles", Reason: fmt.Sprintf("进攻方 %d / 防守方 %d 无效", s.Attacker, s.Defender)}
	}

	all := make([]Card, 0, s.Rules.DeckSize())
	all = append(all, s.Deck...)
	for _, h := range s.Hands {
		all = append(all, h...)
	}
	all = append(all, s.Pile...)
	all = append(all, s.Discard...)
	if err := checkFullDeck(s.Rules, all); err != nil {
		return nil, err
	}

	e := &Engine{
		rules:       s.Rules,
		deck:        cloneCards(s.Deck),
		hands:       make([][]Card, n),
		pile:        cloneCards(s.Pile),
		discard:     cloneCards(s.Discard),
		trumpCard:   s.TrumpCard,
		trump:       s.TrumpCard.Suit,
		attacker:    s.Attacker,
		defender:    s.Defender,
		attacks:     s.Attacks,
		roundOpen:   s.RoundOpen,
		out:         append([]bool{}, s.Out...),
		finishOrder: append([]int{}, s.FinishOrder...),
		moves:       append([]Move{}, s.Moves...),
	}
	for i, h := range s.Hands {
		e.hands[i] = cloneCards(h)
	}
	if s.Result != nil {
		r := s.Result.clone()
		e.result = &r
	}
	return e, nil
}

// checkFullDeck 校验 cards 与规则生成的整副牌一一对应，没有重复也没有缺失
func checkFullDeck(rules Ruleset, cards []Card) error {
	want := NewDeck(rules)
	if len(cards) != len(want) {
		return &ConfigError{Field: "deck", Reason: fmt.Sprintf("需要 %d 张牌，实际 %d 张", len(want), len(cards))}
	}
	counts := make(map[Card]int, len(want))
	for _, c := range want {
		counts[c]++
	}
	for _, c := range cards {
		if counts[c] == 0 {
			return &ConfigError{Field: "deck", Reason: "多余或重复的牌 " + c.String()}
		}
		counts[c]--
	}
	return nil
}
