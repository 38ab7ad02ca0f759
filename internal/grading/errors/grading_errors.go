package gradingerrors

import (
	"net/http"

	"aegira/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end date must not precede start date",
		http.StatusBadRequest,
	)
	ErrTeamNotFound = apperror.New(
		apperror.CodeNotFound,
		"team not found",
		http.StatusNotFound,
	)
	ErrWorkerNotFound = apperror.New(
		apperror.CodeNotFound,
		"worker not found",
		http.StatusNotFound,
	)
	ErrWorkerNotInTeam = apperror.New(
		apperror.CodeInvalidInput,
		"worker is not assigned to a team",
		http.StatusUnprocessableEntity,
	)
)
