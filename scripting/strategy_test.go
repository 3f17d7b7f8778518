package scripting

import (
	"errors"
	"testing"
	"time"

	"go-durak/durak"
)

const lowestFirst = `
function chooseAttack(hand, pile, trump) {
	if (pile.length > 0) return -1;
	var best = 0;
	for (var i = 1; i < hand.length; i++) {
		if (hand[i].rank < hand[best].rank) best = i;
	}
	return best;
}
function chooseDefense(hand, attack, trump) {
	for (var i = 0; i < hand.length; i++) {
		if (hand[i].suit === attack.suit && hand[i].rank > attack.rank) return i;
	}
	log("no same-suit card for", attack.code);
	return null;
}
`

func cards(t *testing.T, codes ...string) []durak.Card {
	t.Helper()
	out := make([]durak.Card, 0, len(codes))
	for _, s := range codes {
		c, err := durak.ParseCard(s)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, c)
	}
	return out
}

func TestScriptStrategyChoosesCards(t *testing.T) {
	s, err := New(lowestFirst, 0)
	if err != nil {
		t.Fatal(err)
	}
	hand := cards(t, "QS", "7D", "AH")

	c, ok := s.ChooseAttackCard(hand, nil, durak.Hearts)
	if !ok || c != hand[1] {
		t.Fatalf("attack = %v, %v", c, ok)
	}
	if _, ok := s.ChooseAttackCard(hand, cards(t, "7C", "8C"), durak.Hearts); ok {
		t.Fatal("script declined the follow-up")
	}

	c, ok = s.ChooseDefenseCard(hand, cards(t, "10S")[0], durak.Hearts)
	if !ok || c != hand[0] {
		t.Fatalf("defense = %v, %v", c, ok)
	}
	if _, ok := s.ChooseDefenseCard(hand, cards(t, "KC")[0], durak.Hearts); ok {
		t.Fatal("null should mean pick up")
	}
}

func TestScriptStrategyMissingFunction(t *testing.T) {
	_, err := New(`function chooseAttack() { return 0 }`, 0)
	if !errors.Is(err, ErrScript) {
		t.Fatalf("err = %v", err)
	}
	_, err = New(`this is not javascript`, 0)
	if !errors.Is(err, ErrScript) {
		t.Fatalf("err = %v", err)
	}
}

func TestScriptStrategyTimeoutFallsBack(t *testing.T) {
	src := `
function chooseAttack(hand) { while (true) {} }
function chooseDefense(hand) { return 99 }
`
	s, err := New(src, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	hand := cards(t, "AH", "6C", "9S")

	start := time.Now()
	c, ok := s.ChooseAttackCard(hand, nil, durak.Hearts)
	if time.Since(start) > 2*time.Second {
		t.Fatal("script was not interrupted")
	}
	if !ok || c != hand[1] {
		t.Fatalf("fallback attack = %v, %v", c, ok)
	}

	// 下标越界同样退回默认策略
	c, ok = s.ChooseDefenseCard(hand, cards(t, "7C")[0], durak.Hearts)
	if !ok || c != hand[0] {
		t.Fatalf("fallback defense = %v, %v", c, ok)
	}
}

func TestScriptStrategyPlaysFullGame(t *testing.T) {
	s, err := New(lowestFirst, 0)
	if err != nil {
		t.Fatal(err)
	}
	rules := durak.DefaultRuleset()
	rules.Seed = 7
	e, err := durak.NewGame(2, rules)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; e.Actor() >= 0; i++ {
		if i > 5000 {
			t.Fatal("game did not finish")
		}
		if _, err := durak.PlayAI(e, e.Actor(), s); err != nil {
			t.Fatal(err)
		}
	}
}
