package dto

import (
	"sync"

	"github.com/gorilla/websocket"
)

type ConnInterface interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// RealConn 真实客户端连接。gorilla 不允许并发写，写操作加锁
type RealConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (r *RealConn) WriteMessage(messageType int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Conn.WriteMessage(messageType, data)
}

func (r *RealConn) Close() error {
	return r.Conn.Close()
}

// 玩家连接对象结构体
type PlayerConn struct {
	PlayerID string
	Conn     ConnInterface
	Online   bool
}
