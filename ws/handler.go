package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin: Origin kontrolü gateway'de yapılır — buraya gelen
	// trafik zaten iç ağdan geçmiştir.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, /ws endpoint'i: upgrade yapar, client'ı hub'a bağlar.
type Handler struct {
	hub *Hub

	// onConnect, bağlantı kurulduğunda çağrılan opsiyonel callback.
	// main.go bunu session ısındırmaya bağlar: kullanıcı WS açtığında
	// projection session'ı kurulur ve ilk snapshot'lar fold'lanır.
	// Callback pattern — ws paketi services'i import etmez, circular
	// dependency oluşmaz.
	onConnect func(userID string)
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// SetOnConnect, bağlantı callback'ini kaydeder; wire-up sırasında bir kez
// çağrılır.
func (h *Handler) SetOnConnect(fn func(userID string)) {
	h.onConnect = fn
}

// HandleConnection, isteği WebSocket'e yükseltip client'ı hub'a kaydeder
// ve OpReady gönderir.
//
// Kimlik ?user_id= query parameter'ından okunur: tarayıcılar WebSocket
// açılışında custom header gönderemediği için gateway'in doğruladığı
// kimlik buradan taşınır.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "missing user_id", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", userID, err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}

	h.hub.register <- client

	if h.onConnect != nil {
		go h.onConnect(userID)
	}

	client.sendEvent(Event{Op: OpReady, Data: ReadyData{UserID: userID}})

	// ReadPump handler goroutine'inde bloklar; HTTP handler böylece
	// bağlantı ömrü boyunca dönmez.
	go client.WritePump()
	client.ReadPump()
}
