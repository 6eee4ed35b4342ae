package membermigrations

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations holds the member schema migrations.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
