package versions

import (
	"rentdesk/manager/schema"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrations are applied in order. AutoMigrate handles additive column
// changes on startup, destructive changes belong here as new entries.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "0_initial_schema",
			Migrate: func(txn *gorm.DB) error {
				return txn.Migrator().AutoMigrate(schema.AllTables()...)
			},
			Rollback: func(txn *gorm.DB) error {
				return txn.Migrator().DropTable(
					&schema.RentRecord{}, &schema.Contract{}, &schema.Tenant{},
					&schema.Property{}, &schema.User{},
				)
			},
		},
	}
}
