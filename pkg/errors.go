// Package pkg, katmanlar arasında paylaşılan küçük yapı taşlarını tutar:
// hata taksonomisi ve HTTP response zarfı.
//
// Hatalar sentinel değer olarak tanımlıdır; katmanlar fmt.Errorf("%w: ...")
// ile bağlam ekleyerek sarar, karşılaştırma errors.Is ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import "errors"

// Store ve service katmanı bu sentinel'leri sarar; handler katmanı
// mapErrorToStatus ile HTTP status code'a çevirir.
var (
	// ErrNotFound: referans verilen kayıt/ilişki/kullanıcı yok.
	// Non-fatal — caller'a no-op veya kullanıcı mesajı olarak yansır.
	ErrNotFound = errors.New("not found")

	// ErrStore: record store transport/availability hatası.
	// Store adapter retry budget'ını tükettikten sonra caller'a yansıtır.
	ErrStore = errors.New("store unavailable")

	// ErrValidation: malformed kayıt veya istek.
	// Fold sırasında kayıt atlanır (fold devam eder), API'de 400 döner.
	ErrValidation = errors.New("validation failed")

	// ErrStaleSnapshot: fold'un taşıdığı snapshot version, uygulanmış
	// version'dan yeni değil. İç kullanım — sessizce discard edilir,
	// asla API'ye yansımaz.
	ErrStaleSnapshot = errors.New("stale snapshot")

	// ErrBadRequest: geçersiz istek parametresi.
	ErrBadRequest = errors.New("bad request")

	// ErrInternal: beklenmeyen iç hata.
	ErrInternal = errors.New("internal error")
)
