// ABOUTME: PocketBase collections migration for backupvaultd.
// ABOUTME: Creates the seed_backups collection holding one encrypted blob per user.

package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		seedBackups := core.NewBaseCollection("seed_backups")
		seedBackups.Fields.Add(
			&core.TextField{
				Name:     "user_id",
				Required: true,
			},
			&core.TextField{
				Name:     "backup_id",
				Required: true,
			},
			&core.TextField{
				Name:     "params_json",
				Required: true,
			},
			&core.TextField{
				Name:     "ct_b64",
				Required: true,
				Max:      8192,
			},
			&core.NumberField{
				Name: "updated_at",
			},
		)
		seedBackups.AddIndex("idx_seed_backups_user_id", true, "user_id", "")
		return app.Save(seedBackups)
	}, func(app core.App) error {
		col, err := app.FindCollectionByNameOrId("seed_backups")
		if err != nil {
			return nil
		}
		return app.Delete(col)
	})
}
