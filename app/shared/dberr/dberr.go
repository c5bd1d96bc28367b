// Package dberr classifies Postgres errors from either driver the service runs on:
// bun's pgdriver in production and pgx's stdlib adapter in the integration suite.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
	codeSerialization   = "40001"
	codeDeadlock        = "40P01"
)

func sqlState(err error) string {
	var pdErr pgdriver.Error
	if errors.As(err, &pdErr) {
		return pdErr.Field('C')
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return err != nil && sqlState(err) == codeUniqueViolation
}

// IsCheckViolation reports whether err is a CHECK constraint violation.
func IsCheckViolation(err error) bool {
	return err != nil && sqlState(err) == codeCheckViolation
}

// IsRetryable reports serialization failures and deadlocks.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch sqlState(err) {
	case codeSerialization, codeDeadlock:
		return true
	}
	return false
}
