package database

// schema.go builds the DDL from the entity registry instead of carrying a
// hand-written statement per table. Referential integrity is enforced by
// the repository engine, not by database constraints, so the generated
// tables declare no FOREIGN KEY clauses and stay portable between MySQL
// and SQLite.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/health-record-service/internal/entity"
)

// Migrate creates the users table and one table per registered descriptor.
// Every statement is CREATE TABLE IF NOT EXISTS, so running it on an
// existing database is a no-op.
func Migrate(ctx context.Context, db *sql.DB, driver string, reg *entity.Registry) error {
	stmts := []string{usersDDL(driver)}
	for _, d := range reg.All() {
		stmts = append(stmts, tableDDL(driver, d))
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func usersDDL(driver string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
	id %s,
	email VARCHAR(255) NOT NULL UNIQUE,
	username VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	is_active %s NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL
)`, idColumn(driver), columnType(driver, entity.KindBool))
}

func tableDDL(driver string, d *entity.Descriptor) string {
	cols := []string{"\tid " + idColumn(driver)}
	for _, f := range d.Fields {
		null := ""
		if f.Required {
			null = " NOT NULL"
		}
		cols = append(cols, fmt.Sprintf("\t%s %s%s", f.Name, columnType(driver, f.Kind), null))
	}
	cols = append(cols, "\tcreated_at DATETIME NOT NULL", "\tupdated_at DATETIME NULL")
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", d.Table, strings.Join(cols, ",\n"))
}

// idColumn is the one place the two dialects truly diverge: SQLite wants
// INTEGER PRIMARY KEY AUTOINCREMENT, MySQL wants AUTO_INCREMENT.
func idColumn(driver string) string {
	if driver == "sqlite3" {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "BIGINT NOT NULL PRIMARY KEY AUTO_INCREMENT"
}

func columnType(driver string, k entity.Kind) string {
	sqlite := driver == "sqlite3"
	switch k {
	case entity.KindInt:
		if sqlite {
			return "INTEGER"
		}
		return "BIGINT"
	case entity.KindFloat:
		if sqlite {
			return "REAL"
		}
		return "DOUBLE"
	case entity.KindBool:
		if sqlite {
			return "INTEGER"
		}
		return "TINYINT(1)"
	case entity.KindTime:
		return "DATETIME"
	case entity.KindDate:
		if sqlite {
			return "TEXT"
		}
		return "VARCHAR(10)"
	default:
		if sqlite {
			return "TEXT"
		}
		return "VARCHAR(500)"
	}
}
