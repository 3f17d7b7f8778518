package durak

import (
	"fmt"
	"strings"
)

// Suit 花色，除王牌花色外互相之间没有大小
type Suit string

const (
	Hearts   Suit = "Hearts"
	Diamonds Suit = "Diamonds"
	Clubs    Suit = "Clubs"
	Spades   Suit = "Spades"
)

// AllSuits 标准四种花色
var AllSuits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Code 返回花色的单字母缩写，例如 "H"
func (s Suit) Code() string {
	switch s {
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	case Spades:
		return "S"
	}
	return "?"
}

func (s Suit) valid() bool {
	return s.Code() != "?"
}

// Rank 点数，只按序数比较大小
type Rank int

const (
	Six Rank = iota
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// AllRanks 36 张牌的点数，从小到大
var AllRanks = []Rank{Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

var rankNames = [...]string{"6", "7", "8", "9", "10", "Jack", "Queen", "King", "Ace"}
var rankCodes = [...]string{"6", "7", "8", "9", "10", "J", "Q", "K", "A"}

func (r Rank) String() string {
	if !r.valid() {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

// Code 返回点数缩写，例如 "J"
func (r Rank) Code() string {
	if !r.valid() {
		return "?"
	}
	return rankCodes[r]
}

func (r Rank) valid() bool {
	return r >= Six && r <= Ace
}

// Card 一张牌，不可变值
type Card struct {
	Rank Rank
	Suit Suit
}

// String 返回 "7 of Spades" 形式
func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// Code 返回 "7S" 形式，JSON 也使用这种写法
func (c Card) Code() string {
	return c.Rank.Code() + c.Suit.Code()
}

func (c Card) MarshalText() ([]byte, error) {
	if !c.Rank.valid() || !c.Suit.valid() {
		return nil, fmt.Errorf("无效的牌: %d/%s", int(c.Rank), c.Suit)
	}
	return []byte(c.Code()), nil
}

func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Beats 判断 defense 能否压住 attack：同花色更大，或者用王牌压非王牌
func Beats(defense, attack Card, trump Suit) bool {
	if defense.Suit == attack.Suit {
		return defense.Rank > attack.Rank
	}
	return defense.Suit == trump && attack.Suit != trump
}

var rankAliases = map[string]Rank{
	"6": Six, "six": Six,
	"7": Seven, "seven": Seven,
	"8": Eight, "eight": Eight,
	"9": Nine, "nine": Nine,
	"10": Ten, "ten": Ten, "t": Ten,
	"j": Jack, "jack": Jack,
	"q": Queen, "queen": Queen,
	"k": King, "king": King,
	"a": Ace, "ace": Ace,
}

var suitAliases = map[string]Suit{
	"h": Hearts, "hearts": Hearts, "♥": Hearts,
	"d": Diamonds, "diamonds": Diamonds, "♦": Diamonds,
	"c": Clubs, "clubs": Clubs, "♣": Clubs,
	"s": Spades, "spades": Spades, "♠": Spades,
}

// ParseCard 解析玩家输入，支持 "7 of Spades"、"7S"、"10h"、"Q♣"
func ParseCard(s string) (Card, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return Card{}, fmt.Errorf("空的牌面: %q", s)
	}

	var rankPart, suitPart string
	if before, after, ok := strings.Cut(raw, " of "); ok {
		rankPart, suitPart = strings.TrimSpace(before), strings.TrimSpace(after)
	} else {
		runes := []rune(strings.ReplaceAll(raw, " ", ""))
		if len(runes) < 2 {
			return Card{}, fmt.Errorf("无法解析的牌面: %q", s)
		}
		rankPart, suitPart = string(runes[:len(runes)-1]), string(runes[len(runes)-1])
	}

	rank, ok := rankAliases[rankPart]
	if !ok {
		return Card{}, fmt.Errorf("未知点数 %q: %q", rankPart, s)
	}
	suit, ok := suitAliases[suitPart]
	if !ok {
		return Card{}, fmt.Errorf("未知花色 %q: %q", suitPart, s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// NewDeck 按花色、点数顺序生成整副牌（未洗）
func NewDeck(rules Ruleset) []Card {
	deck := make([]Card, 0, rules.DeckSize())
	for _, suit := range rules.Suits {
		for _, rank := range rules.Ranks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

func indexOf(cards []Card, card Card) int {
	for i, c := range cards {
		if c == card {
			return i
		}
	}
	return -1
}

func removeAt(cards []Card, i int) []Card {
	out := make([]Card, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return append(out, cards[i+1:]...)
}

func hasRank(cards []Card, rank Rank) bool {
	for _, c := range cards {
		if c.Rank == rank {
			return true
		}
	}
	return false
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return []Card{}
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
