package durak

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove 不合法的操作，引擎状态保持不变
	ErrInvalidMove = errors.New("invalid move")
	// ErrConfig 创建游戏时的配置错误
	ErrConfig = errors.New("config error")
	// ErrStaleTurn Turn 取得之后局面已经推进过
	ErrStaleTurn = errors.New("turn is stale")
)

// MoveError 描述一次被拒绝的操作
type MoveError struct {
	Op     string
	Player int
	Reason string
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("durak: %s by player %d rejected: %s", e.Op, e.Player, e.Reason)
}

func (e *MoveError) Unwrap() error { return ErrInvalidMove }

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("durak: bad %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

func reject(op string, player int, reason string) error {
	return &MoveError{Op: op, Player: player, Reason: reason}
}
