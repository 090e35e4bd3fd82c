// Package oidc provides the HTTP handlers of the federated sign-in flow.
//
// The flow starts at LoginPath, which records a pending flow and sends the
// browser to the identity provider. The provider returns to CallbackPath
// with a state and a code or an error. Every callback resolves: success
// sets the session cookie and continues to the original return URL, any
// failure returns to the login page with the error kind in the query.
package oidc
