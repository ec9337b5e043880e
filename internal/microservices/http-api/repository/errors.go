package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrForeignKey = errors.New("referenced record does not exist")
	ErrCheck      = errors.New("check constraint violated")
)

// postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
)

// classify maps driver and gorm errors onto the repository sentinels.
// It returns nil for errors it does not recognize.
func classify(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ErrCheck
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyViolation:
			return ErrForeignKey
		case pgCheckViolation, pgNumericOutOfRange:
			return ErrCheck
		}
	}
	return nil
}

// wrap prefixes err with op, keeping both the sentinel and the driver error in the chain.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if c := classify(err); c != nil {
		return fmt.Errorf("%s: %w: %w", op, c, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
