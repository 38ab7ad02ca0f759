package errors

import (
	"net/http"

	"aegira/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New("INVALID_COMPANY_ID", "Format company_id tidak valid", http.StatusBadRequest)
	ErrInvalidTeamID    = apperror.New("INVALID_TEAM_ID", "Format team_id tidak valid", http.StatusBadRequest)
	ErrTeamNotFound     = apperror.New("TEAM_NOT_FOUND", "Team tidak ditemukan", http.StatusNotFound)
)
