// Package postgres embebe el esquema SQL del servidor de autorización.
// Los archivos se aplican en orden lexicográfico (NNNN_nombre.sql).
package postgres

import "embed"

//go:embed *.sql
var FS embed.FS
