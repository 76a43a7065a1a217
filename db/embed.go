// Package db holds the reference schema migrations.
package db

import "embed"

// Migrations is the golang-migrate source for reliefctl built with the
// embed_migrations tag.
//
//go:embed migrations/*.sql
var Migrations embed.FS
