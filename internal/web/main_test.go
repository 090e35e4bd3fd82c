package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/auth"
	"github.com/bapti-church/bapti-web/internal/config"
	"github.com/bapti-church/bapti-web/internal/content"
	"github.com/bapti-church/bapti-web/internal/db/dbtest"
	"github.com/bapti-church/bapti-web/internal/docstore"
	"github.com/bapti-church/bapti-web/internal/guard"
	"github.com/bapti-church/bapti-web/internal/kv/kvtest"
	"github.com/bapti-church/bapti-web/internal/profile"
	"github.com/bapti-church/bapti-web/internal/role"
	"github.com/bapti-church/bapti-web/internal/session"
	"github.com/bapti-church/bapti-web/internal/web"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	"github.com/bapti-church/bapti-web/internal/web/handler/admin/user"
	oidchandler "github.com/bapti-church/bapti-web/internal/web/handler/auth/oidc"
	"github.com/bapti-church/bapti-web/internal/web/handler/sessionapi"
)

const password = "s3cret!"

type testApp struct {
	app  *fiber.App
	docs docstore.Store
	uids map[string]string
}

func newConfig(fixed bool) *config.Config {
	cfg := &config.Config{
		DevMode: true,
		Title:   "Bapti Church",
		Webserver: config.Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
		Auth: config.Auth{
			AdminEmails: []string{"admin@bapti.org", "admin@bapti.com"},
		},
	}

	if fixed {
		cfg.Auth.Fixed = config.FixedAuth{
			Enabled: true, UID: "mock-admin-uid", Email: "admin@bapti.com", Password: "pw", DisplayName: "Admin User",
		}
	} else {
		cfg.Auth.Local.Enabled = true
	}

	return cfg
}

// newTestApp wires the whole web service over sqlite and in-memory storage.
// Local accounts: admin (allowlisted), dev, staff and guest.
func newTestApp(t *testing.T, fixed bool) *testApp {
	t.Helper()

	ctx := context.Background()
	cfg := newConfig(fixed)
	db := dbtest.Open(t)
	storage := kvtest.New()
	docs := docstore.NewGormStore(db)

	sessions := session.New(storage)
	sync := profile.NewSynchronizer(docs, profile.NewHistory(storage, 0), cfg.Auth.AdminEmails)

	registry, err := access.NewRegistry(64, sessions, sync)
	require.NoError(t, err)

	opts := auth.Options{
		Sessions: sessions,
		Contexts: registry,
		Profiles: sync,
		Storage:  storage,
	}

	ta := &testApp{docs: docs, uids: map[string]string{}}

	var local *auth.LocalProvider

	if fixed {
		fp, err := auth.NewFixedProvider(cfg.Auth.Fixed, oidchandler.CallbackPath)
		require.NoError(t, err)

		opts.Fixed = fp
	} else {
		local = auth.NewLocalProvider(db)
		opts.Password = []auth.PasswordProvider{local}

		for email, r := range map[string]string{
			"admin@bapti.org": "", "dev@bapti.org": "dev", "staff@bapti.org": "staff", "guest@bapti.org": "",
		} {
			cred, err := local.CreateCredential(ctx, email, password, strings.Split(email, "@")[0])
			require.NoError(t, err)

			ta.uids[email] = cred.UID

			if r != "" {
				require.NoError(t, docs.Set(ctx, profile.Collection, cred.UID, docstore.Record{
					"uid": cred.UID, "email": email, "role": r, "createdAt": 1000,
				}))
			}
		}
	}

	adapter, err := auth.New(opts)
	require.NoError(t, err)

	svc, err := web.New(&handler.Deps{
		Cfg:      cfg,
		DB:       db,
		Auth:     adapter,
		Registry: registry,
		Profiles: profile.NewManager(sync, registry),
		Content:  content.New(docs),
		Guard:    guard.New(prometheus.NewRegistry()),
		Local:    local,
	}, web.WithFastShutdown(), web.OnShutdown(adapter.Close))
	require.NoError(t, err)

	ta.app = svc.App

	return ta
}

func (ta *testApp) do(t *testing.T, method, target, cookie string, body any) *http.Response {
	t.Helper()

	var rd io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		rd = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: cookie})
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == handler.SessionCookie && c.Value != "" {
			return c.Value
		}
	}

	t.Fatalf("no session cookie in response")

	return ""
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (ta *testApp) login(t *testing.T, email string) string {
	t.Helper()

	resp := ta.do(t, fiber.MethodPost, "/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	return sessionCookie(t, resp)
}

func TestLogin(t *testing.T) {
	ta := newTestApp(t, false)

	resp := ta.do(t, fiber.MethodGet, "/login", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var methods map[string]any
	decode(t, resp, &methods)
	assert.Equal(t, true, methods["password"])
	assert.Equal(t, false, methods["federated"])

	resp = ta.do(t, fiber.MethodPost, "/login", "", map[string]string{
		"email": "admin@bapti.org", "password": password, "returnUrl": "/admin",
	})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get(fiber.HeaderLocation))

	cookie := sessionCookie(t, resp)

	resp = ta.do(t, fiber.MethodGet, sessionapi.Path, cookie, nil)

	var snap sessionapi.Snapshot
	decode(t, resp, &snap)
	assert.Equal(t, "authorized", snap.State)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, role.Admin, snap.Profile.Role)
	assert.Contains(t, snap.Permissions, role.ManageUsers)

	// signed in users skip the login page
	resp = ta.do(t, fiber.MethodGet, "/login?returnUrl=/settings", cookie, nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/settings", resp.Header.Get(fiber.HeaderLocation))
}

func TestLogin_Failures(t *testing.T) {
	ta := newTestApp(t, false)

	resp := ta.do(t, fiber.MethodPost, "/login", "", map[string]string{"email": "admin@bapti.org", "password": "nope"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body handler.ErrorBody
	decode(t, resp, &body)
	assert.Equal(t, string(auth.KindInvalidCredentials), body.Kind)
	assert.Equal(t, "Invalid email or password", body.Message)

	resp = ta.do(t, fiber.MethodPost, "/login", "", map[string]string{"email": "admin@bapti.org"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// unsafe return urls fall back to the home page
	resp = ta.do(t, fiber.MethodPost, "/login", "", map[string]string{
		"email": "guest@bapti.org", "password": password, "returnUrl": "//evil.example/",
	})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))
}

func TestGuards(t *testing.T) {
	ta := newTestApp(t, false)

	resp := ta.do(t, fiber.MethodGet, "/admin", "", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?returnUrl=%2Fadmin", resp.Header.Get(fiber.HeaderLocation))

	staff := ta.login(t, "staff@bapti.org")

	resp = ta.do(t, fiber.MethodGet, "/admin", staff, nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	resp = ta.do(t, fiber.MethodGet, "/admin/news", staff, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = ta.do(t, fiber.MethodGet, "/settings", staff, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	admin := ta.login(t, "admin@bapti.org")

	resp = ta.do(t, fiber.MethodGet, "/admin", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var overview map[string]any
	decode(t, resp, &overview)
	assert.EqualValues(t, 1, overview["users"].(map[string]any)["admin"])

	resp = ta.do(t, fiber.MethodGet, "/admin/settings", admin, nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
}

func TestRoleManagement(t *testing.T) {
	ta := newTestApp(t, false)

	// the guest needs a profile first
	ta.login(t, "guest@bapti.org")

	admin := ta.login(t, "admin@bapti.org")
	guestUID := ta.uids["guest@bapti.org"]

	resp := ta.do(t, fiber.MethodPut, "/admin/roles/"+guestUID, admin, map[string]string{"role": "staff"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPut, "/admin/roles/"+ta.uids["dev@bapti.org"], admin, map[string]string{"role": "guest"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// the refusal reason stays in the log
	var refused handler.ErrorBody
	decode(t, resp, &refused)
	assert.Equal(t, user.MsgPermissionDenied, refused.Message)

	resp = ta.do(t, fiber.MethodPut, "/admin/roles/"+ta.uids["admin@bapti.org"], admin, map[string]string{"role": "dev"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPut, "/admin/roles/"+guestUID, admin, map[string]string{"role": "owner"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPut, "/admin/roles/nobody", admin, map[string]string{"role": "staff"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = ta.do(t, fiber.MethodGet, "/admin/roles?q=GUEST", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list struct {
		Users []struct {
			UID      string `json:"uid"`
			Role     string `json:"role"`
			Editable bool   `json:"editable"`
		} `json:"users"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Users, 1)
	assert.Equal(t, "staff", list.Users[0].Role)
	assert.True(t, list.Users[0].Editable)
}

func TestContentAndContact(t *testing.T) {
	ta := newTestApp(t, false)
	staff := ta.login(t, "staff@bapti.org")

	resp := ta.do(t, fiber.MethodPost, "/admin/news", staff, map[string]string{
		"title": "Hello", "content": "World", "date": "2026-05-01", "language": "hu",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPost, "/admin/news", staff, map[string]string{"title": "Hello", "language": "hu"})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp = ta.do(t, fiber.MethodGet, "/api/news?lang=hu-HU", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var news []content.News
	decode(t, resp, &news)
	require.Len(t, news, 1)
	assert.Equal(t, "Hello", news[0].Title)

	resp = ta.do(t, fiber.MethodPost, "/api/contact", "", map[string]string{
		"name": "Anna", "email": "anna@example.org", "subject": "Hi", "message": "Hello",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = ta.do(t, fiber.MethodGet, "/admin/messages", staff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var msgs []content.Message
	decode(t, resp, &msgs)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Anna", msgs[0].Name)
}

func TestAppSettings(t *testing.T) {
	ta := newTestApp(t, false)
	dev := ta.login(t, "dev@bapti.org")

	req := httptest.NewRequest(fiber.MethodPut, "/admin/settings/site", strings.NewReader(`{"defaultLanguage":"en"}`))
	req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: dev})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = ta.do(t, fiber.MethodGet, "/", "", nil)

	var home map[string]any
	decode(t, resp, &home)
	assert.Equal(t, "en", home["defaultLanguage"])

	req = httptest.NewRequest(fiber.MethodPut, "/admin/settings/site", strings.NewReader(`{"defaultLanguage":"??"}`))
	req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: dev})

	resp, err = ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// developers see every login
	resp = ta.do(t, fiber.MethodGet, "/settings", dev, nil)

	var page map[string]any
	decode(t, resp, &page)
	assert.Equal(t, true, page["allUsers"])
}

func TestChangePassword(t *testing.T) {
	ta := newTestApp(t, false)
	staff := ta.login(t, "staff@bapti.org")

	tests := []struct {
		name    string
		current string
		next    string
		want    int
	}{
		{name: "too short", current: password, next: "short", want: fiber.StatusUnprocessableEntity},
		{name: "unchanged", current: password, next: password, want: fiber.StatusUnprocessableEntity},
		{name: "wrong current", current: "nope", next: "a-new-password", want: fiber.StatusUnauthorized},
		{name: "changed", current: password, next: "a-new-password", want: fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ta.do(t, fiber.MethodPost, "/settings/password", staff, map[string]string{
				"currentPassword": tt.current, "newPassword": tt.next,
			})
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	resp := ta.do(t, fiber.MethodPost, "/login", "", map[string]string{"email": "staff@bapti.org", "password": password})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPost, "/login", "", map[string]string{"email": "staff@bapti.org", "password": "a-new-password"})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPost, "/settings/password", "", map[string]string{
		"currentPassword": password, "newPassword": "a-new-password",
	})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
}

func TestAccountActive(t *testing.T) {
	ta := newTestApp(t, false)

	// the guest needs a profile first
	ta.login(t, "guest@bapti.org")

	admin := ta.login(t, "admin@bapti.org")
	guestPath := "/admin/roles/" + ta.uids["guest@bapti.org"] + "/active"

	resp := ta.do(t, fiber.MethodPut, guestPath, admin, map[string]bool{"active": false})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPost, "/login", "", map[string]string{"email": "guest@bapti.org", "password": password})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPut, guestPath, admin, map[string]bool{"active": true})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	ta.login(t, "guest@bapti.org")

	resp = ta.do(t, fiber.MethodPut, guestPath, admin, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPut, "/admin/roles/"+ta.uids["dev@bapti.org"]+"/active", admin, map[string]bool{"active": false})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPut, "/admin/roles/"+ta.uids["admin@bapti.org"]+"/active", admin, map[string]bool{"active": false})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = ta.do(t, fiber.MethodPut, "/admin/roles/nobody/active", admin, map[string]bool{"active": false})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t, false)
	cookie := ta.login(t, "staff@bapti.org")

	resp := ta.do(t, fiber.MethodPost, "/logout", cookie, nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	resp = ta.do(t, fiber.MethodGet, sessionapi.Path, cookie, nil)

	var snap sessionapi.Snapshot
	decode(t, resp, &snap)
	assert.Equal(t, "unauthenticated", snap.State)
	assert.Empty(t, snap.Permissions)
}

func TestFederatedFixedFlow(t *testing.T) {
	ta := newTestApp(t, true)

	resp := ta.do(t, fiber.MethodGet, "/auth/oidc/login?returnUrl=%2Fadmin", "", nil)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	callback, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	require.NoError(t, err)
	assert.Equal(t, oidchandler.CallbackPath, callback.Path)

	resp = ta.do(t, fiber.MethodGet, callback.String(), "", nil)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get(fiber.HeaderLocation))

	cookie := sessionCookie(t, resp)

	resp = ta.do(t, fiber.MethodGet, "/admin", cookie, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// the fixed identity has no local password to change
	resp = ta.do(t, fiber.MethodPost, "/settings/password", cookie, map[string]string{
		"currentPassword": "pw", "newPassword": "another-password",
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// the state is single use
	resp = ta.do(t, fiber.MethodGet, callback.String(), "", nil)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?error=popup-closed", resp.Header.Get(fiber.HeaderLocation))
}

func TestInfraRoutes(t *testing.T) {
	ta := newTestApp(t, false)

	resp := ta.do(t, fiber.MethodGet, web.CheckAlivePath, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = ta.do(t, fiber.MethodGet, web.MetricsPath, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
