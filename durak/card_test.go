package durak

import (
	"encoding/json"
	"testing"
)

func TestParseCard(t *testing.T) {
	cases := []struct {
		in   string
		want Card
	}{
		{"7 of Spades", Card{Seven, Spades}},
		{"7S", Card{Seven, Spades}},
		{"10h", Card{Ten, Hearts}},
		{"  queen of clubs ", Card{Queen, Clubs}},
		{"Q♣", Card{Queen, Clubs}},
		{"AD", Card{Ace, Diamonds}},
		{"6 H", Card{Six, Hearts}},
	}
	for _, tc := range cases {
		got, err := ParseCard(tc.in)
		if err != nil {
			t.Fatalf("ParseCard(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseCard(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "X", "1S", "7X", "eleven of hearts"} {
		if _, err := ParseCard(bad); err == nil {
			t.Errorf("ParseCard(%q) expected error", bad)
		}
	}
}

func TestCardStringAndCode(t *testing.T) {
	c := Card{Jack, Diamonds}
	if c.String() != "Jack of Diamonds" {
		t.Errorf("String() = %q", c.String())
	}
	if c.Code() != "JD" {
		t.Errorf("Code() = %q", c.Code())
	}
	back, err := ParseCard(c.String())
	if err != nil || back != c {
		t.Errorf("ParseCard(String()) = %v, %v", back, err)
	}
}

func TestCardJSONUsesCode(t *testing.T) {
	data, err := json.Marshal([]Card{{Ten, Hearts}, {Ace, Spades}})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["10H","AS"]` {
		t.Fatalf("unexpected json: %s", data)
	}
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		t.Fatal(err)
	}
	if cards[0] != (Card{Ten, Hearts}) || cards[1] != (Card{Ace, Spades}) {
		t.Fatalf("unexpected cards: %v", cards)
	}
}

// 穷举所有 (attack, defense, trump) 组合
func TestBeatsExhaustive(t *testing.T) {
	deck := NewDeck(DefaultRuleset())
	if len(deck) != 36 {
		t.Fatalf("deck size = %d", len(deck))
	}
	for _, trump := range AllSuits {
		for _, a := range deck {
			for _, d := range deck {
				want := (d.Suit == a.Suit && d.Rank > a.Rank) ||
					(d.Suit == trump && a.Suit != trump)
				if got := Beats(d, a, trump); got != want {
					t.Fatalf("Beats(%v, %v, %s) = %v, want %v", d, a, trump, got, want)
				}
			}
		}
	}
}

func TestBeatsExamples(t *testing.T) {
	if !Beats(Card{Six, Hearts}, Card{Ace, Spades}, Hearts) {
		t.Error("lowest trump should beat non-trump ace")
	}
	if Beats(Card{Ace, Spades}, Card{Six, Hearts}, Hearts) {
		t.Error("non-trump never beats trump")
	}
	if Beats(Card{King, Clubs}, Card{Seven, Diamonds}, Hearts) {
		t.Error("off-suit non-trump never beats")
	}
	if Beats(Card{Seven, Spades}, Card{Seven, Spades}, Hearts) {
		t.Error("equal rank does not beat")
	}
}
