// Package rewards issues signed score authorizations and relays them to a
// claim ledger. It runs outside the simulation: the host calls Submit after a
// run ends and shows any error to the player.
package rewards

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	ErrInvalidScore = errors.New("rewards: score must be positive")
	ErrNoPlayer     = errors.New("rewards: player identity required")
	ErrNoKey        = errors.New("rewards: signing key required")
	ErrBadSignature = errors.New("rewards: signature mismatch")
	ErrReplayed     = errors.New("rewards: authorization already claimed")
)

// Authorization is a signed statement that player reached score.
type Authorization struct {
	Player    string
	Score     int
	Nonce     string
	IssuedAt  time.Time
	Signature string // Hex HMAC-SHA256 over the other fields
}

func (a Authorization) message() string {
	return fmt.Sprintf("%s:%d:%s:%d", a.Player, a.Score, a.Nonce, a.IssuedAt.Unix())
}

// Signer issues and verifies authorizations with a shared secret.
type Signer struct {
	key   []byte
	now   func() time.Time
	nonce func() string
}

// NewSigner creates a signer for key.
func NewSigner(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	return &Signer{
		key:   append([]byte(nil), key...),
		now:   time.Now,
		nonce: func() string { return uuid.NewString() },
	}, nil
}

func (s *Signer) sign(a Authorization) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(a.message()))
	return hex.EncodeToString(h.Sum(nil))
}

// Issue creates a fresh authorization with a unique nonce.
func (s *Signer) Issue(player string, score int) (Authorization, error) {
	if player == "" {
		return Authorization{}, ErrNoPlayer
	}
	if score <= 0 {
		return Authorization{}, ErrInvalidScore
	}
	a := Authorization{
		Player:   player,
		Score:    score,
		Nonce:    s.nonce(),
		IssuedAt: s.now().UTC().Truncate(time.Second),
	}
	a.Signature = s.sign(a)
	return a, nil
}

// Verify checks the signature of a.
func (s *Signer) Verify(a Authorization) error {
	want, err := hex.DecodeString(s.sign(a))
	if err != nil {
		return err
	}
	got, err := hex.DecodeString(a.Signature)
	if err != nil || !hmac.Equal(got, want) {
		return ErrBadSignature
	}
	return nil
}

// Ledger records claims. RecordClaim returns ErrReplayed for a nonce it has
// already seen.
type Ledger interface {
	RecordClaim(ctx context.Context, a Authorization) error
}

// Client signs scores and relays them to a ledger.
type Client struct {
	signer *Signer
	ledger Ledger
	logger *log.Logger
}

// NewClient creates a client. A nil logger uses the default logger.
func NewClient(signer *Signer, ledger Ledger, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{signer: signer, ledger: ledger, logger: logger.WithPrefix("rewards")}
}

// Submit authorizes score for player and records the claim.
// It returns the claim nonce.
func (c *Client) Submit(ctx context.Context, player string, score int) (string, error) {
	auth, err := c.signer.Issue(player, score)
	if err != nil {
		return "", err
	}
	if err := c.Relay(ctx, auth); err != nil {
		return "", err
	}
	return auth.Nonce, nil
}

// Relay verifies a and records it in the ledger.
func (c *Client) Relay(ctx context.Context, a Authorization) error {
	if err := c.signer.Verify(a); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rewards: relay %s: %w", a.Nonce, err)
	}
	if err := c.ledger.RecordClaim(ctx, a); err != nil {
		c.logger.Warn("claim rejected", "player", a.Player, "nonce", a.Nonce, "err", err)
		return fmt.Errorf("rewards: relay %s: %w", a.Nonce, err)
	}
	c.logger.Info("claim recorded", "player", a.Player, "score", a.Score, "nonce", a.Nonce)
	return nil
}
