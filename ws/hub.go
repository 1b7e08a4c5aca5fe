package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher, service katmanının push event göndermek için gördüğü dar
// interface. Service'ler Hub struct'ını değil bu interface'i alır: testte
// yerine kayıt tutan bir fake konur, Hub'ın iç yapısı service'leri
// ilgilendirmez.
type EventPublisher interface {
	BroadcastToUser(userID string, event Event)
	GetOnlineUserIDs() []string
}

// Hub, açık WebSocket bağlantılarının kaydını tutar ve projection
// push'larını (conversation_refresh, message_create, follow_update) doğru
// kullanıcının TÜM bağlantılarına dağıtır — aynı kullanıcı birden fazla
// tab/cihazdan bağlı olabilir.
//
// Giriş/çıkış register ve unregister channel'larından akar; Run()
// goroutine'i ikisini tek select'te tüketir. Map mutasyonları böylece hep
// aynı goroutine üzerinden mutex altında yapılır.
type Hub struct {
	// userID → bağlantı seti. Go'da set tipi yok; map[*Client]bool ile
	// sadece anahtar varlığı kullanılır.
	clients map[string]map[*Client]bool

	// Broadcast yolu okuma ağırlıklı olduğu için RWMutex.
	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// Outbound event'lere verilen monoton sayaç. Client tarafı sıra
	// karşılaştırması yapabilsin diye her event Seq taşır.
	seq atomic.Int64
}

// NewHub, boş bir hub kurar; event loop için Run ayrıca başlatılmalıdır.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run, giriş/çıkış sinyallerini işleyen loop. Ayrı bir goroutine'de
// çalıştırılır (`go hub.Run()`).
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	log.Printf("[ws] client connected: user=%s (total connections for user: %d)",
		client.userID, len(h.clients[client.userID]))
}

// removeClient, client'ı kayıttan düşürür ve send channel'ını kapatır —
// WritePump kapalı channel'ı görünce bağlantıyı sonlandırır.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)

			// Son bağlantı da gittiyse kullanıcı offline sayılır
			if len(clients) == 0 {
				delete(h.clients, client.userID)
				log.Printf("[ws] user fully disconnected: %s", client.userID)
			} else {
				log.Printf("[ws] client disconnected: user=%s (remaining: %d)",
					client.userID, len(clients))
			}
		}
	}
}

// BroadcastToUser, event'i kullanıcının açık tüm bağlantılarına yazar.
// Kullanıcı offline ise sessizce düşer — push kanalı best-effort'tur,
// gerçek state her zaman HTTP tarafından yeniden çekilebilir.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal user event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[userID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// send buffer'ı dolu: client tüketemiyor. RLock altında
				// unregister'a yazmak deadlock olur, goroutine'e atılır.
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

// GetOnlineUserIDs, en az bir açık bağlantısı olan kullanıcıları döner.
func (h *Hub) GetOnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	return ids
}

// Shutdown, graceful shutdown sırasında tüm send channel'larını kapatıp
// kaydı sıfırlar; WritePump'lar kendi bağlantılarını kapatır.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	log.Println("[ws] hub shut down, all connections closed")
}
