package main

import (
	"fmt"
	"net/http"

	"github.com/attendly/attendance-backend-go/internal/config"
	appHTTP "github.com/attendly/attendance-backend-go/internal/handler/http"
	"github.com/attendly/attendance-backend-go/internal/pkg/cron"
	"github.com/attendly/attendance-backend-go/internal/pkg/database"
	"github.com/attendly/attendance-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendance-backend-go/internal/pkg/sse"
	"github.com/attendly/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/attendly/attendance-backend-go/internal/service/attendance"
	policyService "github.com/attendly/attendance-backend-go/internal/service/policy"
	tokenService "github.com/attendly/attendance-backend-go/internal/service/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	policyRepo := postgresql.NewPolicyRepository(db)
	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()

	tokenManager := tokenService.NewTokenManager(policyRepo, hub)
	resolver := policyService.NewResolver(policyRepo, userRepo)
	policySvc := policyService.NewPolicyService(policyRepo, hub)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, userRepo, resolver, tokenManager, hub)

	scheduler := cron.NewScheduler()
	cleanupJobs := cron.NewCleanupJobs(tokenManager, policyRepo, attendanceRepo)
	cleanupJobs.RegisterJobs(scheduler, cfg.Cron.TokenSweepInterval, cfg.Cron.RetentionSweepInterval)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	settingsHandler := appHTTP.NewSettingsHandler(policySvc)
	tokenHandler := appHTTP.NewTokenHandler(tokenManager)
	userHandler := appHTTP.NewUserHandler(userRepo)
	eventsHandler := appHTTP.NewEventsHandler(hub)

	router := appHTTP.NewRouter(
		cfg,
		jwtService,
		attendanceHandler,
		settingsHandler,
		tokenHandler,
		userHandler,
		eventsHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
