package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/target/wardrobe/config"
	"github.com/target/wardrobe/internal/adapters/authroles"
	"github.com/target/wardrobe/internal/adapters/devauth"
	"github.com/target/wardrobe/internal/adapters/oidc"
	"github.com/target/wardrobe/internal/ports"
)

// BuildAuthProvider returns the third-party login provider for the configured auth mode,
// together with the role mapper it needs. Local mode has no provider and returns nils.
//
//nolint:ireturn // provider implementations are selected at runtime.
func BuildAuthProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.AuthProvider, ports.RoleMapper, error) {
	roleMapper := authroles.StaticRoleMapper{
		AdminGroup: cfg.AdminGroup,
		UserGroup:  cfg.UserGroup,
	}

	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:    cfg.DevAuth.UserID,
			Email:     cfg.DevAuth.Email,
			FirstName: firstNameFromEmail(cfg.DevAuth.Email),
			Groups:    cfg.DevAuth.Groups,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dev auth provider: %w", err)
		}
		if logger != nil {
			logger.Warn("mock auth enabled; every third-party login signs in as the dev user",
				"email", cfg.DevAuth.Email)
		}
		return prov, roleMapper, nil

	case config.AuthModeOAuth:
		oauth := cfg.OAuth
		// Only enable when fully configured
		if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
			return nil, nil, errors.New("oauth auth mode requires OAUTH_DISCOVERY_URL, OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET")
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("oidc provider: %w", err)
		}
		return prov, roleMapper, nil

	default:
		return nil, nil, nil
	}
}

func firstNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return ""
	}
	return strings.ToUpper(local[:1]) + local[1:]
}
