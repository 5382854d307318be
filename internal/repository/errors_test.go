package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	plain := errors.New("boom")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, ErrAlreadyExists},
		{"wrapped unique", fmt.Errorf("save: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), ErrAlreadyExists},
		{"serialization", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, ErrConflict},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, ErrConflict},
		{"lock", &pgconn.PgError{Code: pgerrcode.LockNotAvailable}, ErrConflict},
		{"other pg", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, nil},
		{"plain", plain, plain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapPgError(tc.in)
			if tc.name == "other pg" {
				assert.Same(t, tc.in, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
