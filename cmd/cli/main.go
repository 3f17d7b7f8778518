// 终端版杜拉克：0 号座位是真人，其余座位由 AI 操作
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"go-durak/durak"
	"go-durak/scripting"
	"go-durak/utils"
)

func main() {
	players := flag.Int("players", 2, "玩家人数 (2-5)")
	seed := flag.Uint64("seed", 0, "洗牌种子，0 表示随机")
	strategy := flag.String("strategy", durak.StrategyGreedy, "AI 策略: greedy / first / script")
	script := flag.String("script", "", "strategy=script 时使用的 JS 文件")
	logLevel := flag.String("log", "warn", "日志级别")
	flag.Parse()

	if _, err := utils.InitLogger(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ai, err := loadStrategy(*strategy, *script)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	rules := durak.DefaultRuleset()
	rules.Seed = *seed
	e, err := durak.NewGame(*players, rules)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	g := &game{engine: e, ai: ai, human: 0, in: bufio.NewScanner(os.Stdin), out: os.Stdout}
	g.run()
}

func loadStrategy(name, path string) (durak.MoveStrategy, error) {
	if name != "script" {
		return durak.StrategyByName(name)
	}
	if path == "" {
		return nil, fmt.Errorf("strategy=script 需要 -script 文件")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return scripting.New(string(src), 0)
}
