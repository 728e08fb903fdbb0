package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/medflow/payroll-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation
	case "23505":
		if strings.Contains(pqErr.Constraint, "staff_period") {
			return errors.Conflict("a salary calculation already exists for this staff member and period")
		}
		return errors.Conflict("a record with these values already exists")

	// Foreign key violation
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "salary_status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: DRAFT, PENDING, CONFIRMED, PAID",
		})

	case strings.Contains(constraint, "month_range"):
		return errors.Validation(map[string]string{
			"month": "must be between 1 and 12",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}
