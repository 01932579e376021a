package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Olprog59/go-carehome/internal/dto"
	"github.com/Olprog59/go-carehome/internal/ports"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// tableMapping binds one record type to its table / Lie un type d'enregistrement à sa table
// One descriptor per entity replaces the per-entity statement boilerplate:
// the engine below builds every CRUD statement from the column list, the
// entity file contributes only encode/scan and its own extra queries.
type tableMapping[T any] struct {
	table    string
	idColumn string
	columns  []string // every column except the id, insert order / toutes les colonnes sauf l'id, ordre d'insertion
	keepID   bool     // insert writes the record's id too; archive tables preserve original ids
	id       func(*T) int64
	values   func(*T) []any               // one value per column, same order / une valeur par colonne, même ordre
	scan     func(rowScanner) (*T, error) // scans id first, then the columns / lit l'id d'abord, puis les colonnes
	entity   string                       // element name in the export envelope
	export   func(*T) any
}

func (m *tableMapping[T]) selectList() string {
	return m.idColumn + ", " + strings.Join(m.columns, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// crudRepository is the generic persistence engine / Moteur de persistance générique
// It implements ports.Repository[T] for any mapped record type.
type crudRepository[T any] struct {
	db ports.DBTX
	m  *tableMapping[T]
}

// Create inserts a new record. The generated identifier is not handed back;
// callers re-read to learn it.
func (r *crudRepository[T]) Create(ctx context.Context, record *T) error {
	cols := r.m.columns
	args := r.m.values(record)
	if r.m.keepID {
		cols = append([]string{r.m.idColumn}, cols...)
		args = append([]any{r.m.id(record)}, args...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.m.table, strings.Join(cols, ", "), placeholders(len(cols)))
	_, err := r.db.ExecContext(ctx, query, args...)
	return handleError(err)
}

// Read retrieves the record with the given id, or ErrNoRecord.
func (r *crudRepository[T]) Read(ctx context.Context, id int64) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		r.m.selectList(), r.m.table, r.m.idColumn)
	record, err := r.m.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, handleError(err)
	}
	return record, nil
}

// ReadAll retrieves every record, id ascending.
func (r *crudRepository[T]) ReadAll(ctx context.Context) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		r.m.selectList(), r.m.table, r.m.idColumn)
	return r.queryMany(ctx, query)
}

// queryMany runs a multi-row query through the mapping's scanner.
func (r *crudRepository[T]) queryMany(ctx context.Context, query string, args ...any) ([]*T, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, handleError(err)
	}
	defer rows.Close()

	var records []*T
	for rows.Next() {
		record, err := r.m.scan(rows)
		if err != nil {
			return nil, handleError(err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, handleError(err)
	}
	return records, nil
}

// Update overwrites the full row keyed by the record's identifier.
// A missing id is a documented no-op success, not an error.
func (r *crudRepository[T]) Update(ctx context.Context, record *T) error {
	assignments := make([]string, len(r.m.columns))
	for i, col := range r.m.columns {
		assignments[i] = col + " = ?"
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		r.m.table, strings.Join(assignments, ", "), r.m.idColumn)
	args := append(r.m.values(record), r.m.id(record))
	_, err := r.db.ExecContext(ctx, query, args...)
	return handleError(err)
}

// DeleteByID removes the record. Idempotent: deleting an absent id succeeds.
func (r *crudRepository[T]) DeleteByID(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.m.table, r.m.idColumn)
	_, err := r.db.ExecContext(ctx, query, id)
	return handleError(err)
}

// ExportByID serializes one record to w as an indented, self-describing
// JSON document. An absent id is ErrNoRecord, never a crash.
func (r *crudRepository[T]) ExportByID(ctx context.Context, id int64, w io.Writer) error {
	record, err := r.Read(ctx, id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.NewExportEnvelope(r.m.entity, r.m.export(record)))
}
