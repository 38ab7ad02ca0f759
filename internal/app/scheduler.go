package app

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"aegira/internal/absence"
	"aegira/internal/attendance"
	"aegira/internal/checkin"
	"aegira/internal/company"
	"aegira/internal/finalizer"
	"aegira/internal/holiday"
	"aegira/internal/leave"
	"aegira/internal/messaging/kafka"
	"aegira/internal/scoring"
	"aegira/internal/shared/connection"
	"aegira/internal/summary"
	"aegira/internal/team"
	"aegira/internal/worker"
)

// RunScheduler menjalankan sweep harian dan sweep akhir shift pada tick
// per jam. Gate jam lokal ada di dalam service, jadi proses ini cukup satu
// instance untuk semua company.
func RunScheduler() error {
	logger := zap.L().Named("app.scheduler")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	defer rdb.Close()

	companyRepo := company.NewRepository(gormDB)
	teamRepo := team.NewRepository(gormDB)
	workerRepo := worker.NewRepository(gormDB)
	checkinRepo := checkin.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	absenceRepo := absence.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	summaryRepo := summary.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	engine := scoring.NewEngine(checkinRepo, attendanceRepo, absenceRepo, leaveRepo, holidayRepo)
	summaryService := summary.NewService(summaryRepo, teamRepo, workerRepo, checkinRepo, attendanceRepo, absenceRepo, leaveRepo, rdb)
	finalizerService := finalizer.NewService(sqlDB, companyRepo, teamRepo, workerRepo, attendanceRepo, absenceRepo, leaveRepo, holidayRepo, outboxRepo, engine, summaryService)

	scheduler := finalizer.NewScheduler(finalizerService)
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("scheduler shutting down")
	scheduler.Stop()

	return nil
}
