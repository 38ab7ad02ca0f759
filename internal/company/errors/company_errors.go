package errors

import (
	"net/http"

	"aegira/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New("INVALID_COMPANY_ID", "Format company_id tidak valid", http.StatusBadRequest)
	ErrCompanyNotFound  = apperror.New("COMPANY_NOT_FOUND", "Company tidak ditemukan", http.StatusNotFound)
	ErrCompanyInactive  = apperror.New("COMPANY_INACTIVE", "Company sudah tidak aktif", http.StatusForbidden)
	ErrInvalidTimezone  = apperror.New("INVALID_TIMEZONE", "Timezone tidak dikenal", http.StatusBadRequest)
)
