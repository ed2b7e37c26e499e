package test

import (
	"context"
	"sync"
	"testing"

	kioskAuth "github.com/MrEthical07/kioskAuth"
)

// Concurrent refreshes with the same token race on the stored-token CAS;
// exactly one caller may win a new pair, the rest read as reuse.
func TestConcurrentRefreshSingleWinner(t *testing.T) {
	_, engine := newKioskEngine(t, nil)
	ctx := context.Background()

	code := requestCode(t, engine, "9876543210", kioskAuth.LoginMobile)
	login, err := engine.VerifyOTP(ctx, "9876543210", kioskAuth.LoginMobile, code)
	if err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Refresh(ctx, login.RefreshToken); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly one winning refresh, got %d", winners)
	}
}
