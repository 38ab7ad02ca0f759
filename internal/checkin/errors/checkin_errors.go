package checkinerrors

import (
	"net/http"

	"aegira/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidWorkerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid worker id",
		http.StatusBadRequest,
	)
	ErrWorkerNotFound = apperror.New(
		apperror.CodeNotFound,
		"worker not found",
		http.StatusNotFound,
	)
	ErrWorkerInactive = apperror.New(
		apperror.CodeInvalidState,
		"inactive workers cannot check in",
		http.StatusBadRequest,
	)
	ErrInvalidMetric = apperror.New(
		apperror.CodeInvalidInput,
		"wellness metrics must be between 1 and 5",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
)
