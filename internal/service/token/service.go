package token

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
)

const (
	digits  = "0123456789"
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Publisher is the notification channel: fire-and-forget broadcast.
type Publisher interface {
	Publish(topic string, data interface{})
}

type ManagerImpl struct {
	policyRepo policy.Repository
	publisher  Publisher
	now        func() time.Time
}

func NewTokenManager(policyRepo policy.Repository, publisher Publisher) *ManagerImpl {
	return &ManagerImpl{
		policyRepo: policyRepo,
		publisher:  publisher,
		now:        time.Now,
	}
}

// WithClock overrides the rotation clock. Test hook.
func (m *ManagerImpl) WithClock(now func() time.Time) *ManagerImpl {
	m.now = now
	return m
}

// Rotate implements policy.TokenManager.
func (m *ManagerImpl) Rotate(ctx context.Context, department string) (policy.VerificationToken, error) {
	settings, err := m.policyRepo.GetSettings(ctx)
	if err != nil {
		return policy.VerificationToken{}, fmt.Errorf("failed to load settings for rotation: %w", err)
	}

	code, err := generateCode(settings.TokenGen)
	if err != nil {
		return policy.VerificationToken{}, fmt.Errorf("failed to generate code: %w", err)
	}

	scope := policy.TokenScopeGlobal
	if department != "" {
		scope = department
	}

	expirySeconds := settings.TokenExpirySeconds
	if expirySeconds <= 0 {
		expirySeconds = 10
	}

	token := policy.VerificationToken{
		Scope:     scope,
		Code:      code,
		IssuedAt:  m.now(),
		TTLMillis: int64(expirySeconds) * 1000,
	}

	if err := m.policyRepo.SetToken(ctx, token); err != nil {
		return policy.VerificationToken{}, fmt.Errorf("failed to store rotated token: %w", err)
	}

	m.publisher.Publish("token_rotated", map[string]interface{}{
		"scope": scope,
		"token": token,
	})

	return token, nil
}

// Validate implements policy.TokenManager.
func (m *ManagerImpl) Validate(ctx context.Context, scope, code string, now time.Time) (bool, error) {
	stored, err := m.policyRepo.GetToken(ctx, scope)
	if err != nil {
		if errors.Is(err, policy.ErrTokenNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load token at scope %q: %w", scope, err)
	}

	if stored.Expired(now) {
		m.evict(ctx, scope)
		return false, nil
	}

	return stored.Code == code, nil
}

// tokenCheck is one branch of the additive cascade. It answers accept,
// reject or not-applicable; the first accept wins and exhaustion rejects.
type tokenCheck struct {
	name string
	fn   func(ctx context.Context) (accepted bool, scope string, err error)
}

// CheckAdditive implements policy.TokenManager. Global and team tokens are
// additive: a valid global code is accepted for everyone even when the team
// has its own code.
func (m *ManagerImpl) CheckAdditive(ctx context.Context, code, targetDepartment string, userDepartments []string, now time.Time) (policy.MatchResult, error) {
	checks := []tokenCheck{
		{
			name: "team",
			fn: func(ctx context.Context) (bool, string, error) {
				if targetDepartment == "" {
					return false, "", nil
				}
				tp, err := m.policyRepo.GetTeamPolicy(ctx, targetDepartment)
				if err != nil {
					if errors.Is(err, policy.ErrTeamPolicyNotFound) {
						return false, "", nil
					}
					return false, "", err
				}
				if !tp.UseCustomToken {
					return false, "", nil
				}
				ok, err := m.Validate(ctx, targetDepartment, code, now)
				return ok, targetDepartment, err
			},
		},
		{
			name: "global",
			fn: func(ctx context.Context) (bool, string, error) {
				ok, err := m.Validate(ctx, policy.TokenScopeGlobal, code, now)
				return ok, policy.TokenScopeGlobal, err
			},
		},
		{
			name: "any-team",
			fn: func(ctx context.Context) (bool, string, error) {
				if targetDepartment != "" {
					return false, "", nil
				}
				for _, dept := range userDepartments {
					ok, err := m.Validate(ctx, dept, code, now)
					if err != nil {
						return false, "", err
					}
					if ok {
						return true, dept, nil
					}
				}
				return false, "", nil
			},
		},
	}

	for _, check := range checks {
		accepted, scope, err := check.fn(ctx)
		if err != nil {
			return policy.MatchResult{}, fmt.Errorf("token check %q: %w", check.name, err)
		}
		if accepted {
			return policy.MatchResult{Valid: true, Scope: scope}, nil
		}
	}

	return policy.MatchResult{}, nil
}

// Sweep implements policy.TokenManager. Best-effort cleanup: validity is
// always re-checked at use time, so concurrent requests racing the sweep are
// harmless.
func (m *ManagerImpl) Sweep(ctx context.Context, now time.Time) (int, error) {
	tokens, err := m.policyRepo.ListTokens(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tokens: %w", err)
	}

	dropped := 0
	for _, t := range tokens {
		if !t.Expired(now) {
			continue
		}
		if err := m.policyRepo.ClearToken(ctx, t.Scope); err != nil {
			slog.Error("failed to clear expired token", "scope", t.Scope, "error", err)
			continue
		}
		dropped++
	}

	return dropped, nil
}

// evict is the lazy cleanup on a validation that found an expired token.
func (m *ManagerImpl) evict(ctx context.Context, scope string) {
	if err := m.policyRepo.ClearToken(ctx, scope); err != nil {
		slog.Error("failed to evict expired token", "scope", scope, "error", err)
	}
}

// generateCode builds a code from the configured alphabet, with the fixed
// prefix uppercased. Disabling both character classes falls back to the full
// alphanumeric set rather than an empty alphabet.
func generateCode(cfg policy.TokenGenConfig) (string, error) {
	length := cfg.Length
	if length <= 0 {
		length = 8
	}

	var alphabet string
	if cfg.IncludeDigits {
		alphabet += digits
	}
	if cfg.IncludeLetters {
		alphabet += letters
	}
	if alphabet == "" {
		alphabet = letters + digits
	}

	var b strings.Builder
	b.WriteString(strings.ToUpper(cfg.Prefix))
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}

	return b.String(), nil
}
