package services

import (
	"strings"

	"gamemarket-api-io/api/internal/common"
)

// Links builds the hyperlinks rendered in responses. Base is prepended to
// every path and may be empty for relative urls.
type Links struct {
	Base string
}

func (l Links) path(parts ...string) string {
	return strings.TrimRight(l.Base, "/") + common.API_PREFIX + "/" + strings.Join(parts, "/")
}

func (l Links) Category(slug string) string {
	return l.path("products", "categories", slug)
}

func (l Links) Game(slug string) string {
	return l.path("products", "games", slug)
}

func (l Links) Item(id string) string {
	return l.path("products", "items", id)
}

func (l Links) User(id string) string {
	return l.path("accounts", "users", id)
}

// Root lists the top level endpoints of the API.
func (l Links) Root() map[string]string {
	base := strings.TrimRight(l.Base, "/")
	return map[string]string{
		"categories":      l.path("products", "categories"),
		"games":           l.path("products", "games"),
		"items":           l.path("products", "items"),
		"item_attributes": l.path("products", "item-attributes"),
		"users":           l.path("accounts", "users"),
		"register":        base + "/auth/registration",
		"obtain_token":    base + "/api/token",
		"token_refresh":   base + "/api/token/refresh",
		"token_verify":    base + "/api/token/verify",
		"login":           base + "/auth/login",
		"logout":          base + "/auth/logout",
		"google_login":    base + "/auth/google",
	}
}

// slugFromReference accepts either a bare slug or a category url and returns
// the slug.
func slugFromReference(ref string) string {
	ref = strings.TrimRight(strings.TrimSpace(ref), "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.ToLower(ref)
}
