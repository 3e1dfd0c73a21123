// Package migrations embeds the goose SQL migrations so the binaries can
// apply them on startup without shipping files next to the executable.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// FS returns the embedded migration files.
func FS() fs.FS {
	return files
}
