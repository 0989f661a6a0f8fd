package refdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gyeh/schoolcases/internal/db"
	"github.com/gyeh/schoolcases/internal/model"
	embedsql "github.com/gyeh/schoolcases/internal/sql"
)

// DefaultTable is the directory table created by the embedded migrations.
const DefaultTable = "ref.schools"

// LoadPostgres reads the directory from a table with the columns of
// ref.schools. table may be schema-qualified.
func LoadPostgres(ctx context.Context, q db.Querier, table string) (*Directory, error) {
	if table == "" {
		table = DefaultTable
	}
	ident := pgx.Identifier(strings.Split(table, "."))
	query := strings.ReplaceAll(embedsql.SelectSchools, "{{table}}", ident.Sanitize())

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query school directory: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SchoolDirectoryEntry, error) {
		var (
			e                    model.SchoolDirectoryEntry
			enrollment, teachers *int64
		)
		if err := row.Scan(&e.Name, &e.Longitude, &e.Latitude, &e.Identifier, &enrollment, &teachers, &e.AdminFTE); err != nil {
			return e, err
		}
		e.Enrollment = intPtr(enrollment)
		e.TeacherCount = intPtr(teachers)
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan school directory: %w", err)
	}
	return NewDirectory(entries), nil
}

func intPtr(v *int64) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
