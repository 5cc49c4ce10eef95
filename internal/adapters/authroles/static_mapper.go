// Package authroles maps identity-provider groups to wardrobe roles.
package authroles

import (
	"strings"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
)

// StaticRoleMapper assigns roles from two configured group names. Matching ignores case
// and surrounding space. An admin match wins over a user match. With no UserGroup
// configured every external account is a regular user; otherwise a non-member is a guest.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	admin := strings.TrimSpace(m.AdminGroup)
	user := strings.TrimSpace(m.UserGroup)
	isUser := user == ""
	for _, g := range groups {
		g = strings.TrimSpace(g)
		switch {
		case admin != "" && strings.EqualFold(g, admin):
			return domainauth.RoleAdmin
		case user != "" && strings.EqualFold(g, user):
			isUser = true
		}
	}
	if isUser {
		return domainauth.RoleUser
	}
	return domainauth.RoleGuest
}
