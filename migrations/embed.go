// Package migrations предоставляет встроенные SQL-миграции для api и auth.
package migrations

import "embed"

// Files содержит все .sql файлы из этой директории (порядок важен: 001, 002, ...).
//go:embed *.sql
var Files embed.FS

// Ordered — миграции в порядке применения.
var Ordered = []string{
	"001_init.sql",
	"002_sessions.sql",
}
