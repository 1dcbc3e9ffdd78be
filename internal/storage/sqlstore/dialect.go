package sqlstore

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect captures the differences between the SQL backends.
type Dialect struct {
	// Name identifies the backend in logs and errors.
	Name string

	// Positional selects $1, $2, ... placeholders instead of ?.
	Positional bool

	// LockClause is appended to row reads that must hold the rows until the
	// transaction ends, e.g. " FOR UPDATE". Empty when the backend serializes
	// writers some other way.
	LockClause string

	// TxOptions is passed to BeginTx for every read-write transaction.
	TxOptions *sql.TxOptions

	// IsConflict reports driver errors that mean "retry the transaction":
	// serialization failures, deadlocks, busy databases.
	IsConflict func(error) bool

	// IsUniqueViolation reports duplicate-key errors.
	IsUniqueViolation func(error) bool
}

// Rebind rewrites ? placeholders for the dialect. Queries in this package
// never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if !d.Positional {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d Dialect) conflict(err error) bool {
	return err != nil && d.IsConflict != nil && d.IsConflict(err)
}

func (d Dialect) unique(err error) bool {
	return err != nil && d.IsUniqueViolation != nil && d.IsUniqueViolation(err)
}
