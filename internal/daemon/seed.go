package daemon

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/auth"
	"github.com/bapti-church/bapti-web/internal/config"
)

// seed creates the first local credential when the table is empty.
func seed(ctx context.Context, cfg *config.Config, local *auth.LocalProvider) error {
	seedCfg := cfg.Auth.Local
	if seedCfg.SeedEmail == "" || seedCfg.SeedPassword == "" {
		return nil
	}

	count, err := local.Count(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	if _, err = local.CreateCredential(ctx, seedCfg.SeedEmail, seedCfg.SeedPassword, "Administrator"); err != nil {
		return err
	}

	log.Warn().Str("email", seedCfg.SeedEmail).Msg("seeded initial credential, change its password")

	return nil
}
