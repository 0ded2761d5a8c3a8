// Package migrations embeds the SQL schema migrations into the binary.
//
// Importing this package (for side effects) wires the embedded files
// into the database layer:
//
//	import _ "github.com/homedeck/homedeck/migrations"
package migrations

import (
	"embed"

	"github.com/homedeck/homedeck/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
