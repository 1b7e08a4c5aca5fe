// Package handlers — HTTP endpoint'leri.
//
// Thin handler prensibi: Parse → Service → Response.
// İş mantığı service katmanındadır; handler sadece isteği çözer,
// servisi çağırır ve sonucu yazar.
//
// Kimlik: auth bu servisin dışındadır. Gateway her isteği doğrular ve
// viewer'ın id'sini X-User-ID header'ına yazar. Header yoksa istek
// gateway'den geçmemiştir — 401 döner.
package handlers

import (
	"net/http"
)

// viewerHeader, gateway'in doğrulanmış kullanıcı id'sini taşıdığı header.
const viewerHeader = "X-User-ID"

// viewerID, istekten doğrulanmış viewer id'sini okur.
// Boş string dönerse caller 401 yazmalıdır.
func viewerID(r *http.Request) string {
	return r.Header.Get(viewerHeader)
}
