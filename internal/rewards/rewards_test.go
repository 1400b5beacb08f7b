package rewards

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type memLedger struct {
	mu     sync.Mutex
	claims map[string]Authorization
	err    error
}

func (l *memLedger) RecordClaim(_ context.Context, a Authorization) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	if l.claims == nil {
		l.claims = make(map[string]Authorization)
	}
	if _, ok := l.claims[a.Nonce]; ok {
		return ErrReplayed
	}
	l.claims[a.Nonce] = a
	return nil
}

func newTestClient(t *testing.T, ledger Ledger) (*Client, *Signer) {
	t.Helper()
	signer, err := NewSigner([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewSigner() failed: %v", err)
	}
	return NewClient(signer, ledger, log.New(io.Discard)), signer
}

func TestNewSignerRequiresKey(t *testing.T) {
	if _, err := NewSigner(nil); !errors.Is(err, ErrNoKey) {
		t.Errorf("NewSigner(nil) error = %v, expected ErrNoKey", err)
	}
}

func TestIssueAndVerify(t *testing.T) {
	signer, err := NewSigner([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	signer.now = func() time.Time { return time.Unix(1700000000, 0) }

	a, err := signer.Issue("alice", 420)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if a.Nonce == "" || a.Signature == "" {
		t.Fatalf("authorization missing nonce or signature: %+v", a)
	}
	if err := signer.Verify(a); err != nil {
		t.Errorf("Verify() failed on a fresh authorization: %v", err)
	}

	tampered := a
	tampered.Score = 9999
	if err := signer.Verify(tampered); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify(tampered) error = %v, expected ErrBadSignature", err)
	}

	other, _ := NewSigner([]byte("other"))
	if err := other.Verify(a); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify with another key error = %v, expected ErrBadSignature", err)
	}

	garbled := a
	garbled.Signature = "not-hex"
	if err := signer.Verify(garbled); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify(garbled) error = %v, expected ErrBadSignature", err)
	}
}

func TestIssueUniqueNonces(t *testing.T) {
	signer, _ := NewSigner([]byte("secret"))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		a, err := signer.Issue("bob", 1)
		if err != nil {
			t.Fatal(err)
		}
		if seen[a.Nonce] {
			t.Fatalf("duplicate nonce %s", a.Nonce)
		}
		seen[a.Nonce] = true
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		player string
		score  int
		want   error
	}{
		{"zero score", "alice", 0, ErrInvalidScore},
		{"negative score", "alice", -5, ErrInvalidScore},
		{"no player", "", 10, ErrNoPlayer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ledger := &memLedger{}
			c, _ := newTestClient(t, ledger)

			_, err := c.Submit(context.Background(), tc.player, tc.score)
			if !errors.Is(err, tc.want) {
				t.Errorf("Submit() error = %v, expected %v", err, tc.want)
			}
			if len(ledger.claims) != 0 {
				t.Error("invalid submissions must not reach the ledger")
			}
		})
	}
}

func TestSubmitRecordsClaim(t *testing.T) {
	ledger := &memLedger{}
	c, _ := newTestClient(t, ledger)

	nonce, err := c.Submit(context.Background(), "alice", 1234)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	claim, ok := ledger.claims[nonce]
	if !ok {
		t.Fatal("claim not recorded")
	}
	if claim.Player != "alice" || claim.Score != 1234 {
		t.Errorf("claim = %+v", claim)
	}
}

func TestRelayRejectsReplay(t *testing.T) {
	ledger := &memLedger{}
	c, signer := newTestClient(t, ledger)

	a, err := signer.Issue("alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Relay(context.Background(), a); err != nil {
		t.Fatalf("first Relay() failed: %v", err)
	}
	if err := c.Relay(context.Background(), a); !errors.Is(err, ErrReplayed) {
		t.Errorf("second Relay() error = %v, expected ErrReplayed", err)
	}
}

func TestSubmitLedgerFailure(t *testing.T) {
	boom := errors.New("ledger offline")
	c, _ := newTestClient(t, &memLedger{err: boom})

	if _, err := c.Submit(context.Background(), "alice", 10); !errors.Is(err, boom) {
		t.Errorf("Submit() error = %v, expected wrapped ledger error", err)
	}
}

func TestSubmitCancelledContext(t *testing.T) {
	ledger := &memLedger{}
	c, _ := newTestClient(t, ledger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Submit(ctx, "alice", 10); !errors.Is(err, context.Canceled) {
		t.Errorf("Submit() error = %v, expected context.Canceled", err)
	}
	if len(ledger.claims) != 0 {
		t.Error("cancelled submission must not reach the ledger")
	}
}
