package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/config"
)

// OIDCProvider handles OIDC authentication.
type OIDCProvider struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config

	endSession string
}

var _ FederatedProvider = (*OIDCProvider)(nil)

// NewOIDCProvider discovers the provider at cfg.ProviderURL.
func NewOIDCProvider(ctx context.Context, cfg config.OIDCAuth) (*OIDCProvider, error) {
	if !cfg.Enabled {
		return nil, ErrOIDCDisabled
	}

	provider, err := oidc.NewProvider(ctx, cfg.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	// end_session_endpoint is optional in the discovery document
	var claims struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}

	_ = provider.Claims(&claims)

	return &OIDCProvider{
		provider: provider,
		verifier: verifier,
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		endSession: claims.EndSessionEndpoint,
	}, nil
}

// AuthURL returns the authorization URL carrying state and nonce.
func (p *OIDCProvider) AuthURL(state, nonce string) string {
	return p.oauth2.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Exchange trades code for tokens, verifies the ID token and its nonce and
// returns the identity described by its claims.
func (p *OIDCProvider) Exchange(ctx context.Context, code, nonce string) (account.Identity, error) {
	oauth2Token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return account.Identity{}, exchangeError(err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return account.Identity{}, ErrNoIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return account.Identity{}, NewError(CodeInvalidCredential, "", fmt.Errorf("failed to verify ID token: %w", err))
	}

	if idToken.Nonce != nonce {
		return account.Identity{}, NewError(CodeInvalidCredential, "", ErrNonceMismatch)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}

	if err = idToken.Claims(&claims); err != nil {
		return account.Identity{}, fmt.Errorf("failed to parse claims: %w", err)
	}

	return account.Identity{
		UID:           "oidc:" + claims.Sub,
		Email:         claims.Email,
		DisplayName:   claims.Name,
		PhotoURL:      claims.Picture,
		EmailVerified: claims.EmailVerified,
		Provider:      account.ProviderOIDC,
	}, nil
}

// LogoutURL constructs the provider's logout URL if supported.
// Returns an empty string if the provider doesn't expose an end session endpoint.
func (p *OIDCProvider) LogoutURL(postLogoutRedirect string) string {
	if p.endSession == "" {
		return ""
	}

	u, err := url.Parse(p.endSession)
	if err != nil {
		return ""
	}

	q := u.Query()
	q.Set("client_id", p.oauth2.ClientID)

	if postLogoutRedirect != "" {
		q.Set("post_logout_redirect_uri", postLogoutRedirect)
	}

	u.RawQuery = q.Encode()

	return u.String()
}

// CallbackError maps the error parameter of an authorization response.
// A user who cancels at the provider gets popup-closed.
func CallbackError(code, description string) *Error {
	switch code {
	case "":
		return nil
	case "access_denied", "login_required", "interaction_required":
		return NewError(CodePopupClosedByUser, description, nil)
	case "unauthorized_client":
		return NewError(CodeUnauthorizedDomain, description, nil)
	case "temporarily_unavailable", "server_error":
		return NewError(CodeNetworkRequestFailed, description, nil)
	default:
		if description == "" {
			description = code
		}

		return NewError(code, description, nil)
	}
}

func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorCode != "" {
		if re.ErrorCode == "invalid_grant" {
			return NewError(CodeInvalidCredential, "", err)
		}

		e := CallbackError(re.ErrorCode, re.ErrorDescription)
		e.Err = err

		return e
	}

	return fmt.Errorf("failed to exchange token: %w", err)
}
