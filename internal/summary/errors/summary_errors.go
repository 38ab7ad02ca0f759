package summaryerrors

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
	ErrTeamNotFound = apperror.New(
		apperror.CodeNotFound,
		"team not found",
		http.StatusNotFound,
	)
	ErrReportNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"you do not have permission to read team reports",
		http.StatusForbidden,
	)
)
