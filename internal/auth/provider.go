package auth

import (
	"context"

	"github.com/bapti-church/bapti-web/internal/account"
)

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=mocks/providers_mock.go github.com/bapti-church/bapti-web/internal/auth PasswordProvider,FederatedProvider

// PasswordProvider signs in with an email and password.
// Failures should be *Error values carrying a provider code.
type PasswordProvider interface {
	PasswordSignIn(ctx context.Context, email, password string) (account.Identity, error)
}

// FederatedProvider runs a redirect based sign-in at an external identity provider.
type FederatedProvider interface {
	// AuthURL is where the browser is sent to start the flow.
	AuthURL(state, nonce string) string
	// Exchange trades the callback code for an identity.
	Exchange(ctx context.Context, code, nonce string) (account.Identity, error)
	// LogoutURL ends the session at the provider. Empty if unsupported.
	LogoutURL(postLogoutRedirect string) string
}
