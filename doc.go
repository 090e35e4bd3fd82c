// Package main is the entry point of bapti-web, the church website service.
// It serves public news and events, a contact form, and an admin area where
// signed in staff manage content and administrators manage user roles.
// Sign-in works against local credentials, LDAP, OpenID Connect or a fixed
// test identity; data is kept through gorm in sqlite, mysql or postgres.
package main
