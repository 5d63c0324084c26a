package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// safeConn serializes writes to a gorilla connection and bounds each
// delivery with a deadline, so one stuck peer cannot stall a room
// broadcast. It implements registry.Conn.
type safeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newSafeConn(conn *websocket.Conn) *safeConn {
	return &safeConn{conn: conn}
}

func (that *safeConn) WriteJSON(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	return that.conn.WriteJSON(v)
}

func (that *safeConn) Close() error {
	return that.conn.Close()
}
