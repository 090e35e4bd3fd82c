// Package navigation is the table of pages of the site and who may see them.
package navigation

import (
	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/guard"
	"github.com/bapti-church/bapti-web/internal/role"
)

// Section groups items in the menu.
type Section string

// Menu sections.
const (
	SectionPublic  Section = "public"
	SectionAccount Section = "account"
	SectionAdmin   Section = "admin"
)

// Item is one page.
type Item struct {
	Title   string      `json:"title"`
	URL     string      `json:"url"`
	Section Section     `json:"section"`
	Auth    bool        `json:"-"`
	Roles   []role.Role `json:"-"`
}

// Page paths.
const (
	HomePath          = "/"
	AboutPath         = "/about"
	ServicesPath      = "/services"
	EventsPath        = "/events"
	SermonsPath       = "/sermons"
	ContactPath       = "/contact"
	SettingsPath      = "/settings"
	AdminPath         = "/admin"
	AdminEventsPath   = "/admin/events"
	AdminNewsPath     = "/admin/news"
	AdminRolesPath    = "/admin/roles"
	AdminMessagesPath = "/admin/messages"
	AdminSettingsPath = "/admin/settings"
)

// Role sets of the protected pages.
var (
	AdminRoles   = []role.Role{role.Admin, role.Dev}             //nolint:gochecknoglobals
	ContentRoles = []role.Role{role.Admin, role.Dev, role.Staff} //nolint:gochecknoglobals
	DevRoles     = []role.Role{role.Dev}                         //nolint:gochecknoglobals
)

// Items lists every page in menu order.
func Items() []Item {
	return []Item{
		{Title: "Home", URL: HomePath, Section: SectionPublic},
		{Title: "About", URL: AboutPath, Section: SectionPublic},
		{Title: "Services", URL: ServicesPath, Section: SectionPublic},
		{Title: "Events", URL: EventsPath, Section: SectionPublic},
		{Title: "Sermons", URL: SermonsPath, Section: SectionPublic},
		{Title: "Contact", URL: ContactPath, Section: SectionPublic},
		{Title: "Settings", URL: SettingsPath, Section: SectionAccount, Auth: true},
		{Title: "Dashboard", URL: AdminPath, Section: SectionAdmin, Auth: true, Roles: AdminRoles},
		{Title: "Events", URL: AdminEventsPath, Section: SectionAdmin, Auth: true, Roles: ContentRoles},
		{Title: "News", URL: AdminNewsPath, Section: SectionAdmin, Auth: true, Roles: ContentRoles},
		{Title: "Messages", URL: AdminMessagesPath, Section: SectionAdmin, Auth: true, Roles: ContentRoles},
		{Title: "Roles", URL: AdminRolesPath, Section: SectionAdmin, Auth: true, Roles: AdminRoles},
		{Title: "App settings", URL: AdminSettingsPath, Section: SectionAdmin, Auth: true, Roles: DevRoles},
	}
}

// Visible returns the items ac may open.
func Visible(ac *access.Context) []Item {
	signedIn := ac != nil && ac.Identity() != nil

	out := make([]Item, 0, len(Items()))

	for _, it := range Items() {
		if it.Auth && !signedIn {
			continue
		}

		if !guard.IsAuthorized(ac, it.Roles...) {
			continue
		}

		out = append(out, it)
	}

	return out
}
