package store

import (
	_ "embed"
	"strings"
)

//go:embed schema.sql
var ddlFile string

// DDLStatements returns the CREATE TABLE / INDEX statements from
// schema.sql, split on semicolons with whitespace trimmed. Used by the
// sqlite driver to bootstrap fresh database files; Postgres schema setup
// is handled by deployment migrations.
func DDLStatements() []string {
	parts := strings.Split(ddlFile, ";")
	var out []string
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
