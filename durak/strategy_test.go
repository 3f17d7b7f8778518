package durak

import (
	"errors"
	"testing"
)

func TestGreedyPrefersSameSuitOverTrump(t *testing.T) {
	hand := mustCards(t, "KC", "6H")
	got, ok := GreedyWeakest{}.ChooseDefenseCard(hand, mustCard(t, "Queen of Clubs"), Hearts)
	if !ok || got != mustCard(t, "KC") {
		t.Fatalf("defense = %v, %v; want King of Clubs", got, ok)
	}
}

func TestGreedyDefenseFallsBackToLowestTrump(t *testing.T) {
	hand := mustCards(t, "AH", "7H", "KD")
	got, ok := GreedyWeakest{}.ChooseDefenseCard(hand, mustCard(t, "QC"), Hearts)
	if !ok || got != mustCard(t, "7H") {
		t.Fatalf("defense = %v, %v; want 7 of Hearts", got, ok)
	}

	// 进攻牌本身是王牌时只能用更大的王牌
	got, ok = GreedyWeakest{}.ChooseDefenseCard(mustCards(t, "7H", "AC"), mustCard(t, "8H"), Hearts)
	if ok {
		t.Fatalf("no defense expected, got %v", got)
	}
}

func TestGreedyAttackKeepsTrumps(t *testing.T) {
	hand := mustCards(t, "6H", "QS", "9C", "7D")
	got, ok := GreedyWeakest{}.ChooseAttackCard(hand, nil, Hearts)
	if !ok || got != mustCard(t, "7D") {
		t.Fatalf("attack = %v; want 7 of Diamonds", got)
	}

	got, ok = GreedyWeakest{}.ChooseAttackCard(mustCards(t, "8H", "6H"), nil, Hearts)
	if !ok || got != mustCard(t, "6H") {
		t.Fatalf("attack = %v; want lowest trump", got)
	}

	// 跟进只看桌面上的点数
	pile := mustCards(t, "9S", "10S")
	got, ok = GreedyWeakest{}.ChooseAttackCard(hand, pile, Hearts)
	if !ok || got != mustCard(t, "9C") {
		t.Fatalf("follow-up = %v, %v", got, ok)
	}
	if _, ok := (GreedyWeakest{}).ChooseAttackCard(mustCards(t, "6H"), pile, Hearts); ok {
		t.Fatal("follow-up without a matching rank should decline")
	}
}

func TestFirstAvailable(t *testing.T) {
	hand := mustCards(t, "AS", "6H", "QC")
	got, ok := FirstAvailable{}.ChooseAttackCard(hand, nil, Hearts)
	if !ok || got != mustCard(t, "AS") {
		t.Fatalf("attack = %v", got)
	}
	got, ok = FirstAvailable{}.ChooseDefenseCard(hand, mustCard(t, "JC"), Hearts)
	if !ok || got != mustCard(t, "6H") {
		t.Fatalf("defense = %v", got)
	}
}

// 所有策略对所有组合都不会给出压不住的牌
func TestStrategiesNeverChooseIllegalDefense(t *testing.T) {
	deck := NewDeck(DefaultRuleset())
	for _, s := range []MoveStrategy{GreedyWeakest{}, FirstAvailable{}} {
		for _, trump := range AllSuits {
			for i, attack := range deck {
				hand := []Card{deck[(i+5)%36], deck[(i+13)%36], deck[(i+22)%36], deck[(i+31)%36]}
				c, ok := s.ChooseDefenseCard(hand, attack, trump)
				if !ok {
					continue
				}
				if indexOf(hand, c) < 0 || !Beats(c, attack, trump) {
					t.Fatalf("%T chose %v against %v (trump %s)", s, c, attack, trump)
				}
			}
		}
	}
}

func TestStrategyByName(t *testing.T) {
	for name, want := range map[string]MoveStrategy{
		"":             GreedyWeakest{},
		StrategyGreedy: GreedyWeakest{},
		StrategyFirst:  FirstAvailable{},
	} {
		got, err := StrategyByName(name)
		if err != nil || got != want {
			t.Errorf("StrategyByName(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := StrategyByName("minimax"); err == nil {
		t.Error("unknown strategy should fail")
	}
}

func TestPlayAINotYourTurn(t *testing.T) {
	e := scenarioGame(t)
	if _, err := PlayAI(e, 1, GreedyWeakest{}); err == nil {
		t.Fatal("defender cannot act on an empty pile")
	}
	m, err := PlayAI(e, 0, GreedyWeakest{})
	if err != nil || m.Kind != MoveAttack || m.Card == nil {
		t.Fatalf("lead move = %+v, %v", m, err)
	}
}

func TestPlayChoiceRejectsStaleTurn(t *testing.T) {
	e := scenarioGame(t)
	turn, err := e.TurnFor(0)
	if err != nil || turn.Defending {
		t.Fatalf("turn = %+v, %v", turn, err)
	}
	card, ok := turn.Ask(GreedyWeakest{})
	if !ok {
		t.Fatal("attacker should have a lead card")
	}

	// 策略思考期间局面被别人推进了
	if _, err := PlayAI(e, 0, FirstAvailable{}); err != nil {
		t.Fatal(err)
	}
	before := len(e.Moves())
	if _, err := PlayChoice(e, turn, card, ok); !errors.Is(err, ErrStaleTurn) {
		t.Fatalf("stale turn err = %v", err)
	}
	if len(e.Moves()) != before {
		t.Fatal("stale turn must not change the game")
	}

	fresh, err := e.TurnFor(1)
	if err != nil || !fresh.Defending || len(fresh.Pile) != 1 {
		t.Fatalf("defender turn = %+v, %v", fresh, err)
	}
}
