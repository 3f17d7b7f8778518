package durak

import (
	"fmt"
	"sort"
)

// MoveStrategy AI 选牌策略。返回 false 表示不出牌：进攻时放弃继续进攻，防守时收牌
type MoveStrategy interface {
	ChooseAttackCard(hand, pile []Card, trump Suit) (Card, bool)
	ChooseDefenseCard(hand []Card, attack Card, trump Suit) (Card, bool)
}

const (
	StrategyGreedy = "greedy"
	StrategyFirst  = "first"
)

// StrategyByName 返回内置策略
func StrategyByName(name string) (MoveStrategy, error) {
	switch name {
	case "", StrategyGreedy:
		return GreedyWeakest{}, nil
	case StrategyFirst:
		return FirstAvailable{}, nil
	}
	return nil, fmt.Errorf("未知的 AI 策略: %s", name)
}

// attackCandidates 首攻可以出任意牌，跟进只能出桌面上已有的点数
func attackCandidates(hand, pile []Card) []Card {
	var out []Card
	for _, c := range hand {
		if len(pile) == 0 || hasRank(pile, c.Rank) {
			out = append(out, c)
		}
	}
	return out
}

// GreedyWeakest 总是出最小的牌，尽量保留王牌
type GreedyWeakest struct{}

func (GreedyWeakest) ChooseAttackCard(hand, pile []Card, trump Suit) (Card, bool) {
	var plain, trumps []Card
	for _, c := range attackCandidates(hand, pile) {
		if c.Suit == trump {
			trumps = append(trumps, c)
		} else {
			plain = append(plain, c)
		}
	}
	if c, ok := lowest(plain); ok {
		return c, true
	}
	return lowest(trumps)
}

func (GreedyWeakest) ChooseDefenseCard(hand []Card, attack Card, trump Suit) (Card, bool) {
	var sameSuit, trumps []Card
	for _, c := range hand {
		if c.Suit == attack.Suit && c.Rank > attack.Rank {
			sameSuit = append(sameSuit, c)
		} else if c.Suit == trump && attack.Suit != trump {
			trumps = append(trumps, c)
		}
	}
	if c, ok := lowest(sameSuit); ok {
		return c, true
	}
	return lowest(trumps)
}

func lowest(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	sorted := cloneCards(cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank < sorted[j].Rank
	})
	return sorted[0], true
}

// FirstAvailable 按手牌顺序出第一张合法的牌
type FirstAvailable struct{}

func (FirstAvailable) ChooseAttackCard(hand, pile []Card, trump Suit) (Card, bool) {
	candidates := attackCandidates(hand, pile)
	if len(candidates) == 0 {
		return Card{}, false
	}
	return candidates[0], true
}

func (FirstAvailable) ChooseDefenseCard(hand []Card, attack Card, trump Suit) (Card, bool) {
	for _, c := range hand {
		if Beats(c, attack, trump) {
			return c, true
		}
	}
	return Card{}, false
}
