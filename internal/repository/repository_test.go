package repository

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		raw.Close()
	})
	return sqlx.NewDb(raw, "postgres"), mock
}

// uuidArg matches a bound uuid string and remembers it.
type uuidArg struct {
	got *string
}

func (a uuidArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	if _, err := uuid.Parse(s); err != nil {
		return false
	}
	*a.got = s
	return true
}

// idThenAny expects a uuid first and n-1 arbitrary arguments after it.
func idThenAny(got *string, n int) []driver.Value {
	args := []driver.Value{uuidArg{got: got}}
	for i := 1; i < n; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	return args
}
