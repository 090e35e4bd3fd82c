// Package auth signs users in and out.
//
// Identities come from one of two strategies chosen once at start up:
//
//   - StrategyRemote: real providers. Password sign-in goes to the local
//     credentials table (Argon2id hashes) and/or an LDAP directory.
//     Federated sign-in is an OpenID Connect authorization code flow.
//   - StrategyFixed: a single built-in identity for environments without a
//     reachable provider. It can never be combined with a remote provider.
//
// The Adapter wraps the providers. A successful login persists the session,
// publishes the identity into the session's access context and then has the
// profile synchronised (synchronously for password logins, in the
// background for federated ones).
//
// Every failure reaching a caller is an *Error whose Kind is one of a small
// fixed set, with a message that can be shown to the user:
//
//	res, err := adapter.Login(ctx, sid, email, password, meta)
//	var authErr *auth.Error
//	if errors.As(err, &authErr) {
//	    fmt.Println(authErr.Kind, authErr.Message)
//	}
package auth
