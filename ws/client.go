package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Tek bir frame yazımının üst sınırı; aşılırsa bağlantı kopuk sayılır.
	writeWait = 10 * time.Second

	// Heartbeat aralığı client'ta 30s'dir; üç kaçırılmış heartbeat'ten
	// sonra bağlantı ölü kabul edilir.
	pongWait = 90 * time.Second

	// Inbound yalnızca heartbeat taşır, mutasyonlar HTTP'den gider —
	// 1 KB fazlasıyla yeter.
	maxMessageSize = 1024

	// Hub'ın event bıraktığı send channel'ının kapasitesi. Dolarsa
	// client yavaş demektir ve bağlantı düşürülür.
	sendBufferSize = 64
)

// Client, tek bir WebSocket bağlantısı. Bağlantı başına iki goroutine
// yaşar: ReadPump inbound heartbeat'leri, WritePump outbound event'leri
// işler. gorilla/websocket eşzamanlı tek okuyucu + tek yazıcı kuralı
// koyduğu için bu ikisi ayrıdır.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	// Hub'ın bıraktığı serialize edilmiş event'ler; WritePump tüketir.
	send chan []byte
	mu   sync.Mutex // conn yazmalarını tekille (gorilla kuralı)
}

// ReadPump, bağlantı kapanana kadar bloklar; çıkarken client'ı hub'dan
// düşürür. Read deadline her heartbeat'te yenilenir — deadline dolması
// sessiz kopmuş bağlantıyı yakalar.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
		return
	}

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.userID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(rawMessage, &event); err != nil {
			log.Printf("[ws] invalid message from user %s: %v", c.userID, err)
			continue
		}

		c.handleEvent(event)
	}
}

// handleEvent inbound tarafın tamamıdır: sadece heartbeat tanınır,
// gerisi loglanıp düşer.
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	default:
		log.Printf("[ws] unknown op from user %s: %s", c.userID, event.Op)
	}
}

// sendEvent, event'i bu client'ın send buffer'ına bırakır; buffer doluysa
// client düşürülür.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for user %s: %v", c.userID, err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("[ws] send buffer full for user %s, dropping connection", c.userID)
		c.hub.unregister <- c
	}
}

// WritePump, send channel'ını tüketip frame'leri bağlantıya yazar.
// Channel'ın kapanması hub'ın client'ı düşürdüğü anlamına gelir; close
// frame gönderilip çıkılır.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			c.writeMessage(websocket.CloseMessage, nil)
			return
		}

		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// writeMessage, write deadline kurup frame yazar. Tüm conn yazmaları
// buradan geçer; mutex gorilla'nın tek-yazıcı kuralını garanti eder.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
