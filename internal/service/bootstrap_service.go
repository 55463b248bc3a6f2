package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/events"
)

// BootstrapRequest is the body the edge signs to create an account on
// behalf of a client that has no session yet. Password is optional;
// accounts created without one can only authenticate through the edge.
type BootstrapRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password,omitempty"`
}

// ReplayGuard records consumed payloads. Claim reports false when key
// was already claimed inside the guard's window.
type ReplayGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// BootstrapService creates accounts from edge-signed payloads.
type BootstrapService struct {
	accounts  *AuthService
	verifier  *auth.PayloadVerifier
	transport *auth.TokenService
	replay    ReplayGuard
}

// NewBootstrapService wires the bootstrap flow. transport and replay
// may be nil: without a transport service any transport token is
// rejected, and without a guard payloads are not deduplicated.
func NewBootstrapService(accounts *AuthService, verifier *auth.PayloadVerifier, transport *auth.TokenService, replay ReplayGuard) *BootstrapService {
	return &BootstrapService{
		accounts:  accounts,
		verifier:  verifier,
		transport: transport,
		replay:    replay,
	}
}

// Bootstrap verifies envelope against req, checks the optional
// transport token, consumes the envelope, and creates the account.
func (b *BootstrapService) Bootstrap(ctx context.Context, envelope string, req BootstrapRequest, transportToken string) (*domain.User, domain.IssuedToken, error) {
	if err := b.verifier.Verify(envelope, req); err != nil {
		b.reject(ctx, req.Identity, "payload signature mismatch")
		return nil, domain.IssuedToken{}, err
	}
	if err := validateIdentity(req.Identity); err != nil {
		return nil, domain.IssuedToken{}, err
	}

	// The envelope is only spent once every other check has passed.
	if transportToken != "" {
		if err := b.checkTransport(ctx, transportToken, req.Identity); err != nil {
			return nil, domain.IssuedToken{}, err
		}
	}

	if b.replay != nil {
		fresh, err := b.replay.Claim(ctx, envelopeKey(envelope))
		if err != nil {
			return nil, domain.IssuedToken{}, b.accounts.storeFailure("claim payload", err)
		}
		if !fresh {
			b.reject(ctx, req.Identity, "payload replayed")
			return nil, domain.IssuedToken{}, auth.ErrInvalidSignature
		}
	}

	user, err := b.accounts.createAccount(ctx, req.Identity, req.Password)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	issued, err := b.accounts.issue(user)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	b.accounts.publish(ctx, events.New(events.EventAccountBootstrapped, user.Identity, "", b.accounts.clock.Now()))
	return user, issued, nil
}

func (b *BootstrapService) checkTransport(ctx context.Context, token, identity string) error {
	if b.transport == nil {
		b.accounts.publish(ctx, events.New(events.EventTokenRejected, identity, "transport tokens not configured", b.accounts.clock.Now()))
		return ErrUnauthenticated
	}
	claims, err := b.transport.Verify(token)
	if err != nil {
		b.accounts.publish(ctx, events.New(events.EventTokenRejected, identity, "invalid transport token", b.accounts.clock.Now()))
		return ErrUnauthenticated
	}
	if claims.Identity != identity {
		b.accounts.publish(ctx, events.New(events.EventTokenRejected, identity,
			fmt.Sprintf("transport token names %q", claims.Identity), b.accounts.clock.Now()))
		return ErrUnauthenticated
	}
	return nil
}

func (b *BootstrapService) reject(ctx context.Context, identity, reason string) {
	b.accounts.logger.Debug("bootstrap rejected", zap.String("identity", identity), zap.String("reason", reason))
	b.accounts.publish(ctx, events.New(events.EventPayloadRejected, identity, reason, b.accounts.clock.Now()))
}

func envelopeKey(envelope string) string {
	sum := sha256.Sum256([]byte(envelope))
	return hex.EncodeToString(sum[:])
}
