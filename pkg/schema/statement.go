package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingKey is returned when an update or delete lacks a key value.
	ErrMissingKey = errors.New("missing key")

	// ErrUnsupportedOperation is returned for updates on composite-key
	// tables. Rows there are deleted and re-inserted instead.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Statement is a SQL text with positional `?` placeholders and the values
// bound to them, in order.
type Statement struct {
	SQL  string
	Args []any
}

// BuildSelect selects every declared column, unfiltered.
func BuildSelect(desc TableDescriptor) Statement {
	return Statement{
		SQL: fmt.Sprintf("SELECT %s FROM %s", joinIdents(desc.columns), quoteIdent(desc.name)),
	}
}

// BuildInsert binds every declared column in descriptor order.
func BuildInsert(desc TableDescriptor, values FieldValues) Statement {
	args := make([]any, 0, len(desc.columns))
	for _, c := range desc.columns {
		args = append(args, values.Get(c))
	}
	return Statement{
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(desc.name), joinIdents(desc.columns), placeholders(len(desc.columns))),
		Args: args,
	}
}

// BuildUpdate sets every non-key column and filters on the single key
// column. Composite keys yield ErrUnsupportedOperation.
func BuildUpdate(desc TableDescriptor, values FieldValues) (Statement, error) {
	switch desc.key.kind {
	case KeyComposite:
		return Statement{}, fmt.Errorf("%w: update on %s with composite key %s; delete and re-add the row",
			ErrUnsupportedOperation, desc.name, desc.key)
	case KeySingle:
	default:
		return Statement{}, fmt.Errorf("%w: table %s has no usable key", ErrUnsupportedOperation, desc.name)
	}

	keyCol := desc.key.Column()
	if !values.Present(keyCol) {
		return Statement{}, fmt.Errorf("%w: provide %s to update", ErrMissingKey, keyCol)
	}

	nonKey := desc.NonKeyColumns()
	if len(nonKey) == 0 {
		return Statement{}, fmt.Errorf("%w: %s has no columns besides its key", ErrUnsupportedOperation, desc.name)
	}

	sets := make([]string, 0, len(nonKey))
	args := make([]any, 0, len(nonKey)+1)
	for _, c := range nonKey {
		sets = append(sets, quoteIdent(c)+" = ?")
		args = append(args, values.Get(c))
	}
	args = append(args, values.Get(keyCol))

	return Statement{
		SQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			quoteIdent(desc.name), strings.Join(sets, ", "), quoteIdent(keyCol)),
		Args: args,
	}, nil
}

// BuildDelete filters on every key column. All of them must be present.
func BuildDelete(desc TableDescriptor, values FieldValues) (Statement, error) {
	keyCols := desc.key.columns
	if len(keyCols) == 0 {
		return Statement{}, fmt.Errorf("%w: table %s has no usable key", ErrUnsupportedOperation, desc.name)
	}
	if missing := values.Missing(keyCols); len(missing) > 0 {
		return Statement{}, fmt.Errorf("%w: need %s to delete from %s (missing %s)",
			ErrMissingKey, desc.key, desc.name, strings.Join(missing, ", "))
	}

	preds := make([]string, 0, len(keyCols))
	args := make([]any, 0, len(keyCols))
	for _, k := range keyCols {
		preds = append(preds, quoteIdent(k)+" = ?")
		args = append(args, values.Get(k))
	}

	return Statement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s", quoteIdent(desc.name), strings.Join(preds, " AND ")),
		Args: args,
	}, nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func joinIdents(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = quoteIdent(id)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
