package auth

import "errors"

var (
	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	// This typically indicates a misconfigured OIDC provider or an incomplete authentication flow.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrNonceMismatch is returned when the ID token nonce differs from the one sent with the flow.
	ErrNonceMismatch = errors.New("id_token nonce does not match")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database or directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrMultipleUsersFound is returned when a query expected one user but found multiple.
	// This typically indicates a misconfigured LDAP filter or duplicate entries.
	ErrMultipleUsersFound = errors.New("multiple users found")

	// ErrCredentialExists is returned when creating a credential for an email that already has one.
	ErrCredentialExists = errors.New("credential with this email already exists")

	// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
	ErrLDAPDisabled = errors.New("ldap authentication is disabled")

	// ErrOIDCDisabled is returned when OIDC is disabled via configuration.
	ErrOIDCDisabled = errors.New("oidc authentication is disabled")

	// ErrFixedDisabled is returned when the fixed provider is disabled via configuration.
	ErrFixedDisabled = errors.New("fixed authentication is disabled")

	// ErrNoProvider is returned when the remote strategy has nothing to sign in with.
	ErrNoProvider = errors.New("no authentication provider configured")

	// ErrMixedStrategy is returned when the fixed provider is combined with a remote provider.
	ErrMixedStrategy = errors.New("fixed provider cannot be combined with remote providers")

	// ErrMissingDependency is returned when the adapter is built without sessions, contexts or profiles.
	ErrMissingDependency = errors.New("auth adapter dependency missing")
)
