package durak

import (
	"time"

	"golang.org/x/exp/rand"
)

const (
	DefaultHandSize           = 6
	DefaultMaxAttacksPerRound = 6
)

// Ruleset 一局游戏的全部可配置规则，创建后不再修改
type Ruleset struct {
	Ranks []Rank `json:"ranks"`
	Suits []Suit `json:"suits"`
	// HandSize 补牌的目标张数
	HandSize int `json:"handSize"`
	// MaxAttacksPerRound 每轮最多进攻牌数
	MaxAttacksPerRound int `json:"maxAttacksPerRound"`
	// RequireMatchingRank 跟进进攻必须与桌面已有点数相同
	RequireMatchingRank bool `json:"requireMatchingRank"`
	// Seed 洗牌种子，0 表示按当前时间
	Seed      uint64 `json:"seed"`
	NoShuffle bool   `json:"noShuffle"`
}

// DefaultRuleset 36 张牌、每人 6 张、每轮最多 6 次进攻
func DefaultRuleset() Ruleset {
	return Ruleset{
		Ranks:               append([]Rank(nil), AllRanks...),
		Suits:               append([]Suit(nil), AllSuits...),
		HandSize:            DefaultHandSize,
		MaxAttacksPerRound:  DefaultMaxAttacksPerRound,
		RequireMatchingRank: true,
	}
}

func (r Ruleset) DeckSize() int {
	return len(r.Ranks) * len(r.Suits)
}

// Validate 校验规则以及玩家人数：发完牌之后至少还要剩一张用来翻王牌
func (r Ruleset) Validate(numPlayers int) error {
	if len(r.Ranks) == 0 {
		return &ConfigError{Field: "ranks", Reason: "点数列表为空"}
	}
	for i, rank := range r.Ranks {
		if !rank.valid() {
			return &ConfigError{Field: "ranks", Reason: "未知点数 " + rank.String()}
		}
		if i > 0 && r.Ranks[i-1] >= rank {
			return &ConfigError{Field: "ranks", Reason: "点数必须严格递增"}
		}
	}
	if len(r.Suits) == 0 {
		return &ConfigError{Field: "suits", Reason: "花色列表为空"}
	}
	seen := make(map[Suit]bool, len(r.Suits))
	for _, suit := range r.Suits {
		if !suit.valid() {
			return &ConfigError{Field: "suits", Reason: "未知花色 " + string(suit)}
		}
		if seen[suit] {
			return &ConfigError{Field: "suits", Reason: "花色重复 " + string(suit)}
		}
		seen[suit] = true
	}
	if r.HandSize < 1 {
		return &ConfigError{Field: "handSize", Reason: "手牌数必须大于 0"}
	}
	if r.MaxAttacksPerRound < 1 {
		return &ConfigError{Field: "maxAttacksPerRound", Reason: "每轮进攻上限必须大于 0"}
	}
	if numPlayers < 2 {
		return &ConfigError{Field: "numPlayers", Reason: "至少需要 2 名玩家"}
	}
	if numPlayers*r.HandSize+1 > r.DeckSize() {
		return &ConfigError{Field: "numPlayers", Reason: "牌不够发牌并翻出王牌"}
	}
	return nil
}

func shuffle(cards []Card, seed uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
