package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrSchemaMismatch is returned when the dataset lacks a table or column the
// queries depend on. The schema is never altered, only checked.
var ErrSchemaMismatch = errors.New("schema mismatch")

// Table names a model and the columns that must exist on its table.
type Table struct {
	Model   any
	Columns []string
}

func VerifySchema(ctx context.Context, gdb *gorm.DB, tables ...Table) error {
	m := gdb.WithContext(ctx).Migrator()
	var missing []string
	for _, t := range tables {
		stmt := &gorm.Statement{DB: gdb}
		if err := stmt.Parse(t.Model); err != nil {
			return fmt.Errorf("parse model %T: %w", t.Model, err)
		}
		name := stmt.Schema.Table
		if !m.HasTable(t.Model) {
			missing = append(missing, name)
			continue
		}
		for _, col := range t.Columns {
			if !m.HasColumn(t.Model, col) {
				missing = append(missing, name+"."+col)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}
