package absenceerrors

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
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrAbsenceNotFound = apperror.New(
		apperror.CodeNotFound,
		"absence record not found",
		http.StatusNotFound,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the absent worker can justify this absence",
		http.StatusForbidden,
	)
	ErrAlreadyJustified = apperror.New(
		apperror.CodeInvalidState,
		"absence has already been justified",
		http.StatusBadRequest,
	)
	ErrAlreadyReviewed = apperror.New(
		apperror.CodeInvalidState,
		"absence has already been reviewed",
		http.StatusBadRequest,
	)
	ErrJustificationRequired = apperror.New(
		apperror.CodeInvalidState,
		"absence must be justified before it can be reviewed",
		http.StatusBadRequest,
	)
	ErrReviewNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"you do not have permission to review absences",
		http.StatusForbidden,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"review decision must be EXCUSED or UNEXCUSED",
		http.StatusBadRequest,
	)
	ErrInvalidReasonCategory = apperror.New(
		apperror.CodeInvalidInput,
		"unknown justification reason category",
		http.StatusBadRequest,
	)
)
