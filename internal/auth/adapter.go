package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/role"
	"github.com/bapti-church/bapti-web/internal/session"
)

// Strategy selects where identities come from. It is fixed at construction.
type Strategy int

const (
	// StrategyRemote signs in against real providers.
	StrategyRemote Strategy = iota
	// StrategyFixed signs in the built-in identity only.
	StrategyFixed
)

func (s Strategy) String() string {
	if s == StrategyFixed {
		return "fixed"
	}

	return "remote"
}

// Defaults used when Options leave a value zero.
const (
	DefaultFlowTimeout = 5 * time.Minute
	DefaultSyncTimeout = 5 * time.Second
)

// Syncer creates or repairs the profile of a freshly signed in identity.
type Syncer interface {
	Sync(
		ctx context.Context,
		ac *access.Context,
		identity account.Identity,
		fallback role.Role,
		meta account.ClientMeta,
	) (*account.Profile, error)
	FallbackRole(email string) role.Role
}

// Contexts is the part of the access registry the adapter writes to.
type Contexts interface {
	Open(sessionID string, expiresAt time.Time) *access.Context
	Get(sessionID string) (*access.Context, bool)
	Drop(sessionID string)
}

// Options wires an Adapter.
type Options struct {
	// Password providers are tried in order; a user-not-found answer moves on
	// to the next one.
	Password  []PasswordProvider
	Federated FederatedProvider
	// Fixed selects StrategyFixed. It must be the only provider.
	Fixed *FixedProvider

	Sessions *session.Store
	Contexts Contexts
	Profiles Syncer
	// Storage holds pending federated flows.
	Storage fiber.Storage

	FlowTimeout   time.Duration
	SyncTimeout   time.Duration
	PostLogoutURL string

	RateLimitPerMinute int
	RateLimitBurst     int
	LimiterSize        int

	Now func() time.Time
}

// Adapter performs login and logout for one deployment and keeps the
// session store, the access contexts and the profiles in step.
type Adapter struct {
	strategy  Strategy
	password  []PasswordProvider
	federated FederatedProvider

	sessions *session.Store
	contexts Contexts
	profiles Syncer
	flows    flowStore
	limiter  *attemptLimiter

	syncTimeout   time.Duration
	postLogoutURL string
	now           func() time.Time

	pending sync.WaitGroup
}

// LoginResult is the outcome of a successful password login.
type LoginResult struct {
	Identity account.Identity
	// Profile is nil when the profile could not be synchronised.
	Profile *account.Profile
	Context *access.Context
	// ExpiresAt is the session expiry.
	ExpiresAt time.Time
}

// FederatedResult is the outcome of a successful federated callback.
// The profile is synchronised in the background; see AwaitProfile.
type FederatedResult struct {
	Identity  account.Identity
	Context   *access.Context
	ReturnURL string
	ExpiresAt time.Time
}

// LogoutResult tells the caller where to send the browser afterwards.
type LogoutResult struct {
	// RedirectURL is the provider's end session URL, empty for local logout.
	RedirectURL string
}

// New validates opts and builds an Adapter.
func New(opts Options) (*Adapter, error) {
	if opts.Sessions == nil || opts.Contexts == nil || opts.Profiles == nil || opts.Storage == nil {
		return nil, ErrMissingDependency
	}

	a := &Adapter{
		sessions:      opts.Sessions,
		contexts:      opts.Contexts,
		profiles:      opts.Profiles,
		syncTimeout:   opts.SyncTimeout,
		postLogoutURL: opts.PostLogoutURL,
		now:           opts.Now,
	}

	remote := len(opts.Password) > 0 || opts.Federated != nil

	switch {
	case opts.Fixed != nil && remote:
		return nil, ErrMixedStrategy
	case opts.Fixed != nil:
		a.strategy = StrategyFixed
		a.password = []PasswordProvider{opts.Fixed}
		a.federated = opts.Fixed
	case remote:
		a.strategy = StrategyRemote
		a.password = opts.Password
		a.federated = opts.Federated
	default:
		return nil, ErrNoProvider
	}

	if a.now == nil {
		a.now = time.Now
	}

	if a.syncTimeout <= 0 {
		a.syncTimeout = DefaultSyncTimeout
	}

	flowTimeout := opts.FlowTimeout
	if flowTimeout <= 0 {
		flowTimeout = DefaultFlowTimeout
	}

	a.flows = flowStore{storage: opts.Storage, timeout: flowTimeout}

	limiter, err := newAttemptLimiter(opts.RateLimitPerMinute, opts.RateLimitBurst, opts.LimiterSize)
	if err != nil {
		return nil, fmt.Errorf("create login limiter: %w", err)
	}

	a.limiter = limiter

	return a, nil
}

// Strategy returns the strategy chosen at construction.
func (a *Adapter) Strategy() Strategy {
	return a.strategy
}

// PasswordEnabled reports whether email and password login is available.
func (a *Adapter) PasswordEnabled() bool {
	return len(a.password) > 0
}

// FederatedEnabled reports whether the federated flow is available.
func (a *Adapter) FederatedEnabled() bool {
	return a.federated != nil
}

// Login signs in with email and password under sessionID. On success the
// session is persisted before the identity is published, and the profile is
// synchronised before Login returns. Profile failures do not fail the login.
func (a *Adapter) Login(
	ctx context.Context,
	sessionID, email, password string,
	meta account.ClientMeta,
) (*LoginResult, error) {
	if !a.PasswordEnabled() {
		return nil, NewError(CodeOperationNotAllowed, "", nil)
	}

	if !a.limiter.allow(email, a.now()) {
		log.Warn().Str("email", email).Str("ip", meta.IP).Msg("login rate limited")

		return nil, NewError(CodeTooManyRequests, "", nil)
	}

	identity, err := a.signIn(ctx, email, password)
	if err != nil {
		nerr := Normalize(err)

		log.Info().
			Err(err).
			Str("email", email).
			Str("kind", string(nerr.Kind)).
			Str("ip", meta.IP).
			Msg("login failed")

		return nil, nerr
	}

	ac, expiry := a.establish(sessionID, identity)

	p, err := a.profiles.Sync(ctx, ac, identity, a.profiles.FallbackRole(identity.Email), meta)
	if err != nil {
		log.Warn().Err(err).Str("uid", identity.UID).Msg("login continues without profile sync")
	}

	log.Info().Str("uid", identity.UID).Str("provider", identity.Provider).Msg("login succeeded")

	return &LoginResult{Identity: identity, Profile: p, Context: ac, ExpiresAt: expiry}, nil
}

func (a *Adapter) signIn(ctx context.Context, email, password string) (account.Identity, error) {
	var lastErr error

	for _, provider := range a.password {
		identity, err := provider.PasswordSignIn(ctx, email, password)
		if err == nil {
			if a.strategy == StrategyFixed {
				identity.Fixed = true
			}

			return identity, nil
		}

		lastErr = err

		var e *Error
		if !errors.As(err, &e) || e.Code != CodeUserNotFound {
			break
		}
	}

	return account.Identity{}, lastErr
}

// establish persists the session, then opens the access context and
// publishes the identity into it.
func (a *Adapter) establish(sessionID string, identity account.Identity) (*access.Context, time.Time) {
	expiry, err := a.sessions.Persist(sessionID, identity)
	if err != nil {
		log.Error().Err(err).Str("uid", identity.UID).Msg("failed to persist session")

		expiry = a.now().Add(a.sessions.TTL())
	}

	ac := a.contexts.Open(sessionID, expiry)
	ac.PublishIdentity(&identity)

	return ac, expiry
}

// BeginFederated starts a federated login and returns the URL to send the
// browser to. returnURL is handed back by CompleteFederated.
func (a *Adapter) BeginFederated(_ context.Context, returnURL string) (string, error) {
	if a.federated == nil {
		return "", NewError(CodeOperationNotAllowed, "", nil)
	}

	state, err := GenerateStateToken()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	nonce, err := GenerateStateToken()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	err = a.flows.put(state, flow{Nonce: nonce, ReturnURL: returnURL, CreatedAt: a.now()})
	if err != nil {
		return "", NewError(CodeNetworkRequestFailed, "", err)
	}

	return a.federated.AuthURL(state, nonce), nil
}

// CompleteFederated finishes the flow identified by state. Unknown or
// expired flows and a user who cancelled at the provider resolve as
// popup-closed. The profile is synchronised asynchronously.
func (a *Adapter) CompleteFederated(
	ctx context.Context,
	sessionID, state, code, providerErr string,
	meta account.ClientMeta,
) (*FederatedResult, error) {
	if a.federated == nil {
		return nil, NewError(CodeOperationNotAllowed, "", nil)
	}

	fl, ok := a.flows.take(state, a.now())
	if !ok {
		return nil, NewError(CodePopupClosedByUser, "", nil)
	}

	if e := CallbackError(providerErr, ""); e != nil {
		log.Info().Str("error", providerErr).Msg("federated login cancelled at provider")

		return nil, e
	}

	identity, err := a.federated.Exchange(ctx, code, fl.Nonce)
	if err != nil {
		nerr := Normalize(err)
		log.Info().Err(err).Str("kind", string(nerr.Kind)).Msg("federated login failed")

		return nil, nerr
	}

	if a.strategy == StrategyFixed {
		identity.Fixed = true
	}

	ac, expiry := a.establish(sessionID, identity)

	a.pending.Add(1)

	go func() {
		defer a.pending.Done()

		syncCtx := context.WithoutCancel(ctx)
		if _, err := a.profiles.Sync(syncCtx, ac, identity, a.profiles.FallbackRole(identity.Email), meta); err != nil {
			log.Warn().Err(err).Str("uid", identity.UID).Msg("background profile sync failed")
		}
	}()

	log.Info().Str("uid", identity.UID).Str("provider", identity.Provider).Msg("federated login succeeded")

	return &FederatedResult{Identity: identity, Context: ac, ReturnURL: fl.ReturnURL, ExpiresAt: expiry}, nil
}

// AwaitProfile waits for the profile of ac for at most the configured sync
// timeout. It returns nil when no profile arrived in time.
func (a *Adapter) AwaitProfile(ctx context.Context, ac *access.Context) *account.Profile {
	ctx, cancel := context.WithTimeout(ctx, a.syncTimeout)
	defer cancel()

	p, err := ac.AwaitProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Str("session", shortID(ac.SessionID())).Msg("profile not ready after federated login")

		return nil
	}

	return p
}

// Logout ends sessionID. It always clears the local session, publishes the
// signed out state and drops the access context. Nothing in it can be
// cancelled.
func (a *Adapter) Logout(_ context.Context, sessionID string) LogoutResult {
	var (
		res      LogoutResult
		identity *account.Identity
	)

	ac, ok := a.contexts.Get(sessionID)
	if ok {
		identity = ac.Identity()
	} else if rec, found := a.sessions.Restore(sessionID); found {
		identity = &rec.Identity
	}

	if identity != nil && identity.Provider == account.ProviderOIDC && a.federated != nil {
		res.RedirectURL = a.federated.LogoutURL(a.postLogoutURL)
	}

	a.sessions.Clear(sessionID)

	if ok {
		ac.PublishIdentity(nil)
	}

	a.contexts.Drop(sessionID)

	log.Info().Str("session", shortID(sessionID)).Msg("logout")

	return res
}

// Close waits for background profile syncs to finish.
func (a *Adapter) Close() {
	a.pending.Wait()
}

func shortID(id string) string {
	const keep = 8
	if len(id) <= keep {
		return id
	}

	return id[:keep] + strings.Repeat("*", 3)
}
