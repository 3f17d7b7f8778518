package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go-durak/durak"
)

const helpText = `命令:
  a <牌>   进攻，例如 "a 7S"、"a 7 of Spades" 或手牌序号 "a 2"
  d <牌>   防守
  p        收牌
  e        结束进攻
  q        退出`

type command struct {
	kind durak.MoveKind
	card durak.Card
	quit bool
	help bool
}

var errUnknownCommand = errors.New("未知命令，输入 h 查看帮助")

// parseCommand 解析一行输入，牌可以写牌面也可以写手牌序号（从 1 开始）
func parseCommand(line string, hand []durak.Card) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, errUnknownCommand
	}
	var cmd command
	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return command{quit: true}, nil
	case "h", "help", "?":
		return command{help: true}, nil
	case "p", "pick", "pickup", "pick_up":
		return command{kind: durak.MovePickUp}, nil
	case "e", "end", "end_attack":
		return command{kind: durak.MoveEndAttack}, nil
	case "a", "attack":
		cmd.kind = durak.MoveAttack
	case "d", "defend":
		cmd.kind = durak.MoveDefend
	default:
		return command{}, errUnknownCommand
	}

	arg := strings.Join(fields[1:], " ")
	if arg == "" {
		return command{}, fmt.Errorf("%s 需要指定一张牌", cmd.kind)
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(hand) {
			return command{}, fmt.Errorf("手牌序号 %d 超出范围", n)
		}
		cmd.card = hand[n-1]
		return cmd, nil
	}
	card, err := durak.ParseCard(arg)
	if err != nil {
		return command{}, err
	}
	cmd.card = card
	return cmd, nil
}

type game struct {
	engine *durak.Engine
	ai     durak.MoveStrategy
	human  int
	in     *bufio.Scanner
	out    io.Writer
}

func (g *game) apply(cmd command) error {
	switch cmd.kind {
	case durak.MoveAttack:
		return g.engine.Attack(g.human, cmd.card)
	case durak.MoveDefend:
		return g.engine.Defend(g.human, cmd.card)
	case durak.MovePickUp:
		return g.engine.PickUp(g.human)
	case durak.MoveEndAttack:
		return g.engine.EndAttack(g.human)
	}
	return errUnknownCommand
}

func (g *game) printTable() {
	e := g.engine
	fmt.Fprintf(g.out, "\n王牌: %s  牌堆剩余: %d  进攻: P%d  防守: P%d\n",
		e.TrumpCard(), e.State().DeckSize, e.AttackerIndex(), e.DefenderIndex())
	for p := 0; p < e.NumPlayers(); p++ {
		if p != g.human {
			fmt.Fprintf(g.out, "  P%d 手牌 %d 张\n", p, len(e.Hand(p)))
		}
	}
	fmt.Fprintf(g.out, "桌面: %s\n", joinCards(e.CenterPile()))
	var hand []string
	for i, c := range e.Hand(g.human) {
		hand = append(hand, fmt.Sprintf("%d:%s", i+1, c.Code()))
	}
	fmt.Fprintf(g.out, "你的手牌: %s\n", strings.Join(hand, " "))
}

func joinCards(cards []durak.Card) string {
	if len(cards) == 0 {
		return "(空)"
	}
	codes := make([]string, len(cards))
	for i, c := range cards {
		codes[i] = c.Code()
	}
	return strings.Join(codes, " ")
}

func (g *game) run() {
	fmt.Fprintln(g.out, helpText)
	for {
		if res, over := g.engine.IsGameOver(); over {
			g.printResult(res)
			return
		}
		actor := g.engine.Actor()
		if actor != g.human {
			move, err := durak.PlayAI(g.engine, actor, g.ai)
			if err != nil {
				fmt.Fprintln(g.out, "AI 出错:", err)
				return
			}
			fmt.Fprintf(g.out, "P%d %s\n", actor, describe(move))
			continue
		}

		g.printTable()
		fmt.Fprint(g.out, "> ")
		if !g.in.Scan() {
			return
		}
		cmd, err := parseCommand(g.in.Text(), g.engine.Hand(g.human))
		if err != nil {
			fmt.Fprintln(g.out, err)
			continue
		}
		if cmd.quit {
			return
		}
		if cmd.help {
			fmt.Fprintln(g.out, helpText)
			continue
		}
		if err := g.apply(cmd); err != nil {
			fmt.Fprintln(g.out, "不能这样出:", err)
		}
	}
}

func describe(m durak.Move) string {
	switch m.Kind {
	case durak.MoveAttack:
		return "进攻 " + m.Card.Code()
	case durak.MoveDefend:
		return "压上 " + m.Card.Code()
	case durak.MovePickUp:
		return "收牌"
	}
	return "结束进攻"
}

func (g *game) printResult(res durak.GameResult) {
	if res.Draw {
		fmt.Fprintln(g.out, "平局！")
		return
	}
	if res.Loser == g.human {
		fmt.Fprintln(g.out, "你是傻瓜 🃏")
		return
	}
	fmt.Fprintf(g.out, "P%d 是傻瓜，你赢了！\n", res.Loser)
}
