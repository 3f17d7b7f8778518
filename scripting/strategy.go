package scripting

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"go-durak/durak"
)

const DefaultTimeout = 200 * time.Millisecond

var ErrScript = errors.New("script error")

// ScriptStrategy 用 JS 脚本实现 AI 选牌。脚本需要定义
//
//	chooseAttack(hand, pile, trump)   返回手牌下标，-1 或 null 表示不出
//	chooseDefense(hand, attack, trump) 返回手牌下标，-1 或 null 表示收牌
//
// 脚本出错或超时时退回到 Fallback。
type ScriptStrategy struct {
	mu       sync.Mutex
	runtime  *goja.Runtime
	timeout  time.Duration
	Fallback durak.MoveStrategy
}

// New 编译并执行脚本，timeout 为 0 时使用 DefaultTimeout
func New(source string, timeout time.Duration) (*ScriptStrategy, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &ScriptStrategy{
		runtime:  goja.New(),
		timeout:  timeout,
		Fallback: durak.GreedyWeakest{},
	}
	s.sandbox()

	if _, err := s.run(func() (goja.Value, error) {
		return s.runtime.RunString(source)
	}); err != nil {
		return nil, fmt.Errorf("%w: 脚本加载失败: %v", ErrScript, err)
	}
	for _, name := range []string{"chooseAttack", "chooseDefense"} {
		if _, ok := goja.AssertFunction(s.runtime.Get(name)); !ok {
			return nil, fmt.Errorf("%w: 缺少函数 %s()", ErrScript, name)
		}
	}
	return s, nil
}

func (s *ScriptStrategy) sandbox() {
	rt := s.runtime
	rt.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		zap.L().Debug("🧩 AI 脚本日志", zap.String("msg", strings.Join(parts, " ")))
		return goja.Undefined()
	})
	rt.Set("require", goja.Undefined())
	rt.Set("eval", goja.Undefined())
	rt.Set("Function", goja.Undefined())
}

// run 在超时后中断脚本，调用方需持有 mu（New 除外）
func (s *ScriptStrategy) run(fn func() (goja.Value, error)) (goja.Value, error) {
	s.runtime.ClearInterrupt()
	timer := time.AfterFunc(s.timeout, func() {
		s.runtime.Interrupt("script execution timeout")
	})
	defer timer.Stop()
	return fn()
}

func (s *ScriptStrategy) call(name string, hand []durak.Card, args ...interface{}) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn, ok := goja.AssertFunction(s.runtime.Get(name))
	if !ok {
		return -1, fmt.Errorf("%w: %s 不是函数", ErrScript, name)
	}
	values := make([]goja.Value, 0, len(args)+1)
	values = append(values, s.runtime.ToValue(cardsToJS(hand)))
	for _, a := range args {
		values = append(values, s.runtime.ToValue(a))
	}

	result, err := s.run(func() (goja.Value, error) {
		return fn(goja.Undefined(), values...)
	})
	if err != nil {
		return -1, fmt.Errorf("%w: %s(): %v", ErrScript, name, err)
	}
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return -1, nil
	}
	idx := int(result.ToInteger())
	if idx >= len(hand) {
		return -1, fmt.Errorf("%w: %s() 返回的下标 %d 越界", ErrScript, name, idx)
	}
	return idx, nil
}

func (s *ScriptStrategy) ChooseAttackCard(hand, pile []durak.Card, trump durak.Suit) (durak.Card, bool) {
	idx, err := s.call("chooseAttack", hand, cardsToJS(pile), string(trump))
	if err != nil {
		zap.L().Warn("⚠️ AI 脚本进攻失败，使用默认策略", zap.Error(err))
		return s.Fallback.ChooseAttackCard(hand, pile, trump)
	}
	if idx < 0 {
		return durak.Card{}, false
	}
	return hand[idx], true
}

func (s *ScriptStrategy) ChooseDefenseCard(hand []durak.Card, attack durak.Card, trump durak.Suit) (durak.Card, bool) {
	idx, err := s.call("chooseDefense", hand, cardToJS(attack), string(trump))
	if err != nil {
		zap.L().Warn("⚠️ AI 脚本防守失败，使用默认策略", zap.Error(err))
		return s.Fallback.ChooseDefenseCard(hand, attack, trump)
	}
	if idx < 0 {
		return durak.Card{}, false
	}
	return hand[idx], true
}

// cardToJS 脚本里看到的牌：{rank: 1, suit: "Spades", code: "7S", name: "7 of Spades"}
func cardToJS(c durak.Card) map[string]interface{} {
	return map[string]interface{}{
		"rank": int(c.Rank),
		"suit": string(c.Suit),
		"code": c.Code(),
		"name": c.String(),
	}
}

func cardsToJS(cards []durak.Card) []interface{} {
	out := make([]interface{}, len(cards))
	for i, c := range cards {
		out[i] = cardToJS(c)
	}
	return out
}
