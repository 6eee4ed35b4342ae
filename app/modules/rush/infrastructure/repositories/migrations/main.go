package rushmigrations

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations holds the rush schema migrations.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
