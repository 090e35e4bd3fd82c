package auth

import (
	"context"
	"crypto/subtle"
	"net/url"
	"strings"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/config"
)

// FixedCode is the authorization code the fixed provider hands to its own callback.
const FixedCode = "fixed"

// FixedProvider signs in one built-in identity. It exists for environments
// without a reachable identity provider and is never combined with one.
type FixedProvider struct {
	identity    account.Identity
	password    string
	callbackURL string
}

var (
	_ PasswordProvider  = (*FixedProvider)(nil)
	_ FederatedProvider = (*FixedProvider)(nil)
)

// NewFixedProvider creates the fixed provider. callbackURL is where the
// federated flow returns to, normally the OIDC callback route.
func NewFixedProvider(cfg config.FixedAuth, callbackURL string) (*FixedProvider, error) {
	if !cfg.Enabled {
		return nil, ErrFixedDisabled
	}

	return &FixedProvider{
		identity: account.Identity{
			UID:           cfg.UID,
			Email:         strings.ToLower(strings.TrimSpace(cfg.Email)),
			DisplayName:   cfg.DisplayName,
			EmailVerified: true,
			Provider:      account.ProviderFixed,
			Fixed:         true,
		},
		password:    cfg.Password,
		callbackURL: callbackURL,
	}, nil
}

// Identity returns the built-in identity.
func (p *FixedProvider) Identity() account.Identity {
	return p.identity
}

// PasswordSignIn accepts only the configured credential pair.
func (p *FixedProvider) PasswordSignIn(_ context.Context, email, password string) (account.Identity, error) {
	if !strings.EqualFold(strings.TrimSpace(email), p.identity.Email) {
		return account.Identity{}, NewError(CodeUserNotFound, "", ErrUserNotFound)
	}

	if p.password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(p.password)) != 1 {
		return account.Identity{}, NewError(CodeWrongPassword, "", ErrInvalidPassword)
	}

	return p.identity, nil
}

// AuthURL points straight back at the callback.
func (p *FixedProvider) AuthURL(state, _ string) string {
	q := url.Values{}
	q.Set("state", state)
	q.Set("code", FixedCode)

	return p.callbackURL + "?" + q.Encode()
}

// Exchange returns the built-in identity for FixedCode.
func (p *FixedProvider) Exchange(_ context.Context, code, _ string) (account.Identity, error) {
	if code != FixedCode {
		return account.Identity{}, NewError(CodeInvalidCredential, "", nil)
	}

	return p.identity, nil
}

// LogoutURL is empty; there is no remote session to end.
func (p *FixedProvider) LogoutURL(string) string {
	return ""
}
