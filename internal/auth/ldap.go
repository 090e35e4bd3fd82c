package auth

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/config"
)

const (
	defaultLDAPFilter  = "(mail={email})"
	defaultLDAPTimeout = 10
)

// LDAPProvider handles LDAP authentication.
type LDAPProvider struct {
	config config.LDAPAuth
	dial   func(url string, opts ...ldap.DialOpt) (*ldap.Conn, error)
}

var _ PasswordProvider = (*LDAPProvider)(nil)

// NewLDAPProvider creates a new LDAP provider.
func NewLDAPProvider(cfg config.LDAPAuth) (*LDAPProvider, error) {
	if !cfg.Enabled {
		return nil, ErrLDAPDisabled
	}

	// Set defaults
	if cfg.UserFilter == "" {
		cfg.UserFilter = defaultLDAPFilter
	}

	if cfg.EmailAttr == "" {
		cfg.EmailAttr = "mail"
	}

	if cfg.NameAttr == "" {
		cfg.NameAttr = "cn"
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultLDAPTimeout
	}

	return &LDAPProvider{config: cfg, dial: ldap.DialURL}, nil
}

// URL returns the server address derived from the configuration.
func (p *LDAPProvider) URL() string {
	hostPort := net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port))

	if p.config.UseSSL {
		return "ldaps://" + hostPort
	}

	return "ldap://" + hostPort
}

// Connect establishes a connection to the LDAP server.
func (p *LDAPProvider) Connect(ctx context.Context) (*ldap.Conn, error) {
	var tlsConfig *tls.Config
	if p.config.UseSSL || p.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: p.config.SkipVerify, //nolint:gosec // skipping verifying tls is ok
			ServerName:         p.config.Host,
		}
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	dialer := &net.Dialer{Timeout: timeout}

	conn, err := p.dial(p.URL(), ldap.DialWithTLSConfig(tlsConfig), ldap.DialWithDialer(dialer))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	// Upgrade to TLS if requested (for non-SSL connections)
	if !p.config.UseSSL && p.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close LDAP connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	conn.SetTimeout(timeout)

	return conn, nil
}

// PasswordSignIn looks the user up by email with the service account and
// then binds as that user.
func (p *LDAPProvider) PasswordSignIn(ctx context.Context, email, password string) (account.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		// an empty password would be an unauthenticated bind that always succeeds
		return account.Identity{}, NewError(CodeInvalidCredential, "", nil)
	}

	conn, err := p.Connect(ctx)
	if err != nil {
		return account.Identity{}, ldapError(err)
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if p.config.BindDN != "" {
		if err = conn.Bind(p.config.BindDN, p.config.BindPassword); err != nil {
			return account.Identity{}, fmt.Errorf("failed to bind with service account: %w", err)
		}
	}

	entry, err := p.searchUserEntry(conn, email)
	if err != nil {
		return account.Identity{}, ldapError(err)
	}

	if err = conn.Bind(entry.DN, password); err != nil {
		return account.Identity{}, ldapError(err)
	}

	return p.identity(entry, email), nil
}

// Filter returns the search filter for email with the placeholder escaped.
func (p *LDAPProvider) Filter(email string) string {
	return strings.ReplaceAll(p.config.UserFilter, "{email}", ldap.EscapeFilter(email))
}

func (p *LDAPProvider) searchUserEntry(conn *ldap.Conn, email string) (*ldap.Entry, error) {
	searchRequest := ldap.NewSearchRequest(
		p.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, // Size limit
		p.config.Timeout,
		false,
		p.Filter(email),
		[]string{p.config.EmailAttr, p.config.NameAttr, "entryUUID", "dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for user: %w", err)
	}

	switch len(searchResult.Entries) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return searchResult.Entries[0], nil
	default:
		return nil, ErrMultipleUsersFound
	}
}

func (p *LDAPProvider) identity(entry *ldap.Entry, email string) account.Identity {
	uid := entry.GetAttributeValue("entryUUID")
	if uid == "" {
		uid = strings.ToLower(entry.DN)
	}

	if mail := entry.GetAttributeValue(p.config.EmailAttr); mail != "" {
		email = mail
	}

	return account.Identity{
		UID:           "ldap:" + uid,
		Email:         strings.ToLower(email),
		DisplayName:   entry.GetAttributeValue(p.config.NameAttr),
		EmailVerified: true,
		Provider:      account.ProviderLDAP,
	}
}

// TestConnection tests the LDAP server connection and bind credentials.
func (p *LDAPProvider) TestConnection(ctx context.Context) error {
	conn, err := p.Connect(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if p.config.BindDN != "" {
		if err := conn.Bind(p.config.BindDN, p.config.BindPassword); err != nil {
			return fmt.Errorf("bind failed: %w", err)
		}
	}

	return nil
}

// ldapError maps directory failures to provider codes.
func ldapError(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewError(CodeUserNotFound, "", err)
	case ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials):
		return NewError(CodeWrongPassword, "", err)
	case ldap.IsErrorWithCode(err, ldap.ErrorNetwork),
		ldap.IsErrorWithCode(err, ldap.LDAPResultUnavailable),
		ldap.IsErrorWithCode(err, ldap.LDAPResultBusy):
		return NewError(CodeNetworkRequestFailed, "", err)
	default:
		return err
	}
}
