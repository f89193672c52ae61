package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/getsy/restaurant-backend/internal/apperr"
)

// Postgres error codes the repositories translate
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// uniqueFields maps unique constraints to the field they guard
var uniqueFields = map[string]string{
	"roles_name_key":        "name",
	"users_email_key":       "email",
	"restaurants_name_key":  "name",
	"restaurants_email_key": "email",
}

// referenceFields maps foreign keys to the referencing field
var referenceFields = map[string]string{
	"users_role_id_fkey":                   "role_id",
	"restaurants_admin_id_fkey":            "admin_id",
	"restaurant_events_restaurant_id_fkey": "restaurant_id",
	"restaurant_events_event_id_fkey":      "event_id",
	"schedules_restaurant_id_fkey":         "restaurant_id",
	"reservations_user_id_fkey":            "user_id",
	"reservations_restaurant_id_fkey":      "restaurant_id",
	"reservations_event_id_fkey":           "event_id",
	"reviews_restaurant_id_fkey":           "restaurant_id",
	"reviews_user_id_fkey":                 "user_id",
}

// checkFields maps check constraints to the field they validate
var checkFields = map[string]string{
	"roles_name_not_blank":          "name",
	"users_status_check":            "status",
	"users_theme_check":             "theme",
	"restaurants_price_range_check": "min_price",
	"restaurants_capacity_check":    "capacity",
	"schedules_working_days_check":  "working_days",
	"reservations_pax_check":        "pax",
	"reservations_status_check":     "status",
	"reviews_rating_check":          "rating",
}

// classify turns a driver error into an apperr error for entity. op is the
// description logged for failures that cannot be classified.
func classify(err error, entity, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(entity)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			field, ok := uniqueFields[pqErr.Constraint]
			if !ok {
				field = "value"
			}
			return apperr.Conflict(entity, field)
		case codeForeignKeyViolation:
			field, ok := referenceFields[pqErr.Constraint]
			if !ok {
				field = "reference"
			}
			return apperr.Validation(apperr.CodeInvalidReference, field,
				fmt.Sprintf("%s does not reference an existing record", field))
		case codeCheckViolation:
			field, ok := checkFields[pqErr.Constraint]
			if !ok {
				field = entity
			}
			return apperr.Invalid(field, "violates "+pqErr.Constraint)
		case codeInvalidText:
			return apperr.Invalid(entity, pqErr.Message)
		}
	}

	return apperr.Storage(op, err)
}

// classifyDelete is classify for deletes, where a foreign-key violation means
// other rows still reference the one being removed.
func classifyDelete(err error, entity, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeForeignKeyViolation {
		return apperr.Conflictf(entity, "%s is still referenced by %s", entity, pqErr.Table)
	}
	return classify(err, entity, op)
}

// expectAffected maps a zero-row write to NotFound
func expectAffected(result sql.Result, entity string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperr.Storage("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}
