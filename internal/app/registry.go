package app

import (
	"database/sql"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"aegira/internal/absence"
	"aegira/internal/attendance"
	"aegira/internal/auth"
	"aegira/internal/checkin"
	"aegira/internal/company"
	"aegira/internal/finalizer"
	"aegira/internal/grading"
	"aegira/internal/holiday"
	"aegira/internal/leave"
	"aegira/internal/messaging/kafka"
	"aegira/internal/middleware"
	"aegira/internal/rbac"
	"aegira/internal/rbac/infra"
	"aegira/internal/scoring"
	"aegira/internal/shared/counter"
	"aegira/internal/summary"
	"aegira/internal/team"
	"aegira/internal/worker"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	companyRepo := company.NewRepository(gormDB)
	teamRepo := team.NewRepository(gormDB)
	workerRepo := worker.NewRepository(gormDB)
	checkinRepo := checkin.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	absenceRepo := absence.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	summaryRepo := summary.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, rbacRepo)

	// --- Scoring Engine ---
	engine := scoring.NewEngine(checkinRepo, attendanceRepo, absenceRepo, leaveRepo, holidayRepo)

	// --- Services ---
	summaryService := summary.NewService(summaryRepo, teamRepo, workerRepo, checkinRepo, attendanceRepo, absenceRepo, leaveRepo, rdb)
	absenceService := absence.NewService(db, absenceRepo, attendanceRepo, outboxRepo, summaryService)
	leaveService := leave.NewService(db, leaveRepo, absenceService, outboxRepo)
	checkinService := checkin.NewService(db, checkinRepo, workerRepo, attendanceRepo, companyRepo, counterRepo, summaryService)
	finalizerService := finalizer.NewService(db, companyRepo, teamRepo, workerRepo, attendanceRepo, absenceRepo, leaveRepo, holidayRepo, outboxRepo, engine, summaryService)
	gradingService := grading.NewService(engine, companyRepo, teamRepo, workerRepo, grading.DefaultMinExpectedWorkDays, grading.DefaultMinLifetimeCheckins)
	authService := auth.NewService(authRepo, rbacService, workerRepo)
	companyService := company.NewService(companyRepo)
	teamService := team.NewService(teamRepo)
	workerService := worker.NewService(workerRepo)
	holidayService := holiday.NewService(holidayRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	rbacHandler := rbac.NewHandler(rbacService)
	companyHandler := company.NewHandler(companyService)
	teamHandler := team.NewHandler(teamService)
	workerHandler := worker.NewHandler(workerService)
	checkinHandler := checkin.NewHandler(checkinService)
	absenceHandler := absence.NewHandler(absenceService, rbacService)
	leaveHandler := leave.NewHandler(leaveService, rbacService)
	holidayHandler := holiday.NewHandler(holidayService, rbacService)
	summaryHandler := summary.NewHandler(summaryService)
	finalizerHandler := finalizer.NewHandler(finalizerService)
	gradingHandler := grading.NewHandler(gradingService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		rbac.RegisterRoutes(api, rbacHandler)
		company.RegisterRoutes(api, companyHandler)
		team.RegisterRoutes(api, teamHandler)
		worker.RegisterRoutes(api, workerHandler, rbacService)
		checkin.RegisterRoutes(api, checkinHandler, rbacService, middleware.Idempotency(rdb))
		absence.RegisterRoutes(api, absenceHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService)
		holiday.RegisterRoutes(api, holidayHandler, rbacService)
		summary.RegisterRoutes(api, summaryHandler, rbacService)
		finalizer.RegisterRoutes(api, finalizerHandler, rbacService)
		grading.RegisterRoutes(api, gradingHandler, rbacService)
	}

	return nil
}
