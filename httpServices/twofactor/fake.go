package twofactor

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
)

// Fake keeps codes in memory. It is only wired when OTP_PROVIDER=fake and
// config validation refuses it in production.
type Fake struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewFake() *Fake {
	return &Fake{codes: map[string]string{}}
}

func (f *Fake) SendCode(ctx context.Context, phoneE164, template string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)
	sessionID := uuid.NewString()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[sessionID] = code
	return sessionID, nil
}

func (f *Fake) VerifyCode(ctx context.Context, sessionID, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want, ok := f.codes[sessionID]
	return ok && want == code, nil
}

// CodeFor returns the code issued for a session, for dev responses and tests.
func (f *Fake) CodeFor(sessionID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[sessionID]
}
