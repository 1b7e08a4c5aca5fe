// Package store — mutation retry.
//
// Transport/availability hataları (ErrStore sınıfı) retry budget'ı içinde
// exponential backoff ile yeniden denenir; budget tükenince hata ErrStore
// olarak caller'a yansır. Domain hataları (ErrNotFound gibi) transport
// hatası DEĞİLDİR — ilk denemede olduğu gibi döner, retry edilmez.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/akinalp/sohbet/pkg"
)

// withRetry, bir mutation'ı timeout + retry politikasıyla çalıştırır.
//
// Her deneme kendi OpTimeout'unu alır. Caller'ın ctx'i iptal olursa
// retry döngüsü hemen biter — UI'ın retry sorumluluğu devralması için
// hata raporlanır, sessizce düşürülmez.
func (a *Adapter) withRetry(ctx context.Context, op func(context.Context) error) error {
	attempts := a.opts.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	backoff := a.opts.RetryBackoff

	for attempt := 1; attempt <= attempts; attempt++ {
		opCtx, cancel := a.withTimeout(ctx)
		err := op(opCtx)
		cancel()

		if err == nil {
			return nil
		}

		// Domain hatası — retry anlamsız, olduğu gibi yukarı.
		if errors.Is(err, pkg.ErrNotFound) || errors.Is(err, pkg.ErrValidation) {
			return err
		}

		lastErr = err

		// Caller vazgeçti — budget'ın kalanını harcama.
		if ctx.Err() != nil {
			break
		}

		if attempt < attempts {
			log.Printf("[store] mutation attempt %d/%d failed, retrying in %s: %v",
				attempt, attempts, backoff, err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", pkg.ErrStore, ctx.Err())
			}
			backoff *= 2
		}
	}

	return fmt.Errorf("%w: %v", pkg.ErrStore, lastErr)
}
