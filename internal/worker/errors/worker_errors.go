package errors

import (
	"net/http"

	"aegira/internal/shared/apperror"
)

var (
	ErrInvalidWorkerID  = apperror.New("INVALID_WORKER_ID", "Format worker_id tidak valid", http.StatusBadRequest)
	ErrInvalidCompanyID = apperror.New("INVALID_COMPANY_ID", "Format company_id tidak valid", http.StatusBadRequest)
	ErrWorkerNotFound   = apperror.New("WORKER_NOT_FOUND", "Worker tidak ditemukan", http.StatusNotFound)
)
