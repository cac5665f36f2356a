// Package migrations embarque le schéma SQL appliqué par goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
