package api

import (
	"errors"
	"net/http"

	"starspread/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var parse *domain.ParseError
	var build *domain.BuildError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &build):
		// Checked before ParseError: a BuildError wraps the ParseError of the
		// offending column. The table exists but its metadata cannot be
		// turned into SQL.
		return http.StatusUnprocessableEntity
	case errors.As(err, &parse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
