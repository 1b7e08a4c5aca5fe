// Package ws, projection push kanalıdır: Hub bağlantı kaydını tutar,
// Client tek bir WebSocket'i sürer, Event tel üzerindeki mesaj biçimidir.
//
// Tipik akış: HTTP POST ile mesaj yazılır, store adapter her iki tarafın
// session'ını uyandırır, session yeni snapshot'ı fold'layıp hub üzerinden
// conversation_refresh yollar ve client listeyi HTTP'den tazeler. Kanal
// tek yönlü veri taşır; inbound sadece heartbeat'tir.
package ws

// Event, tel formatı. Op event türünü seçer, Data (d) op'a özgü payload
// taşır, Seq outbound tarafta artan sayıdır — client atlama görürse kaçan
// event olduğunu anlar.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client'tan gelen tek op.
const (
	OpHeartbeat = "heartbeat" // 30 sn'de bir; read deadline'ı yeniler
)

// Server'dan giden op'lar.
const (
	OpReady        = "ready"         // upgrade sonrası ilk event
	OpHeartbeatAck = "heartbeat_ack"

	// OpMessageCreate, yeni bir mesaj oluşturulduğunda her iki tarafa gönderilir.
	// Data: models.Message
	OpMessageCreate = "message_create"

	// OpConversationRefresh, kullanıcının türetilmiş konuşma state'i
	// değiştiğinde gönderilir. Data: RefreshData. Client tam listeyi
	// GET /api/conversations ile yeniden çeker; event sadece tetikleyicidir.
	OpConversationRefresh = "conversation_refresh"

	// OpFollowUpdate, takip grafiği değiştiğinde gönderilir (takip edildin,
	// takipten çıkarıldın). Data: FollowUpdateData
	OpFollowUpdate = "follow_update"
)

// ReadyData, ready event'inin payload'ı.
type ReadyData struct {
	UserID string `json:"user_id"`
}

// RefreshData, conversation_refresh event'inin payload'ı.
// Rozet sayıları event içinde taşınır ki client listeyi çekmeden
// önce bile badge'i güncelleyebilsin.
type RefreshData struct {
	TotalUnread         int `json:"total_unread"`
	UnreadConversations int `json:"unread_conversations"`
}

// FollowUpdateData, follow_update event'inin payload'ı.
type FollowUpdateData struct {
	FollowerID string `json:"follower_id"`
	Following  bool   `json:"following"`
}
