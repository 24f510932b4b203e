package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nitap-dev/mentor-portal-api/api/swagger"
	"github.com/nitap-dev/mentor-portal-api/internal/handler"
	"github.com/nitap-dev/mentor-portal-api/internal/middleware"
	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/policy"
	"github.com/nitap-dev/mentor-portal-api/internal/repository"
	"github.com/nitap-dev/mentor-portal-api/internal/service"
	"github.com/nitap-dev/mentor-portal-api/internal/session"
	"github.com/nitap-dev/mentor-portal-api/pkg/cache"
	"github.com/nitap-dev/mentor-portal-api/pkg/config"
	"github.com/nitap-dev/mentor-portal-api/pkg/database"
	"github.com/nitap-dev/mentor-portal-api/pkg/logger"
	"github.com/nitap-dev/mentor-portal-api/pkg/mailer"
	corsmiddleware "github.com/nitap-dev/mentor-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nitap-dev/mentor-portal-api/pkg/middleware/requestid"
)

// @title Mentor Portal API
// @version 1.0.0
// @description Mentor-mentee management portal for NIT Arunachal Pradesh
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	principalRepo := repository.NewPrincipalRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	hodRepo := repository.NewHODRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	academicRepo := repository.NewAcademicRepository(db)

	sessions := session.NewStore(redisClient, cfg.Session, logr)
	resolver := policy.NewResolver(principalRepo, facultyRepo, hodRepo, logr)
	metricsSvc := service.NewMetricsService()

	var outbound mailer.Mailer
	if cfg.Mail.Enabled && cfg.Mail.SendgridAPIKey != "" {
		outbound = mailer.NewSendgrid(cfg.Mail, logr)
	} else {
		outbound = mailer.NewConsole(logr)
	}

	notifier := service.NewMeetingNotifier(outbound, metricsSvc, cfg.Notify, logr)
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()
	notifier.Start(rootCtx)
	defer notifier.Stop()

	authSvc := service.NewAuthService(principalRepo, sessions, validate, logr, metricsSvc, cfg.Session)
	studentSvc := service.NewStudentService(studentRepo, principalRepo, facultyRepo, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, hodRepo, studentRepo, principalRepo, validate, logr)
	meetingSvc := service.NewMeetingService(meetingRepo, studentRepo, facultyRepo, hodRepo, notifier, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, studentRepo, facultyRepo, validate, logr)
	messageSvc := service.NewMessageService(messageRepo, principalRepo, studentRepo, facultyRepo, validate, logr)
	recordSvc := service.NewRecordService(recordRepo, academicRepo, studentRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc, cfg.Session)
	studentHandler := handler.NewStudentHandler(studentSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)
	meetingHandler := handler.NewMeetingHandler(meetingSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)
	recordHandler := handler.NewRecordHandler(recordSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.Session(authSvc, resolver, cfg.Session.CookieName))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)
		authed.PUT("/auth/password", authHandler.ChangePassword)

		authed.GET("/students", studentHandler.List)
		authed.POST("/students", middleware.RequireRoles(models.RoleAdmin, models.RoleHOD), studentHandler.Create)
		authed.GET("/students/roll/:rollNumber", studentHandler.GetByRollNumber)
		authed.GET("/students/:id", studentHandler.Get)
		authed.PUT("/students/:id", studentHandler.Update)
		authed.GET("/students/:id/mentor", studentHandler.Mentor)

		authed.GET("/students/:id/internships", recordHandler.ListInternships)
		authed.POST("/students/:id/internships", recordHandler.CreateInternship)
		authed.PUT("/students/:id/internships/:entryId", recordHandler.UpdateInternship)
		authed.DELETE("/students/:id/internships/:entryId", recordHandler.DeleteInternship)
		authed.GET("/students/:id/projects", recordHandler.ListProjects)
		authed.POST("/students/:id/projects", recordHandler.CreateProject)
		authed.PUT("/students/:id/projects/:entryId", recordHandler.UpdateProject)
		authed.DELETE("/students/:id/projects/:entryId", recordHandler.DeleteProject)
		authed.GET("/students/:id/cocurriculars", recordHandler.ListCoCurriculars)
		authed.POST("/students/:id/cocurriculars", recordHandler.CreateCoCurricular)
		authed.GET("/students/:id/career", recordHandler.GetCareerDetails)
		authed.PUT("/students/:id/career", recordHandler.SaveCareerDetails)
		authed.GET("/students/:id/personal-problems", recordHandler.GetPersonalProblem)
		authed.PUT("/students/:id/personal-problems", recordHandler.SavePersonalProblem)
		authed.GET("/students/:id/semesters", recordHandler.ListSemesters)
		authed.PUT("/students/:id/semesters", recordHandler.SaveSemester)

		authed.GET("/faculty", middleware.RequireRoles(models.RoleAdmin, models.RoleHOD), facultyHandler.List)
		authed.POST("/faculty", middleware.RequireRoles(models.RoleAdmin, models.RoleHOD), facultyHandler.Create)
		authed.GET("/faculty/:id", facultyHandler.Get)
		authed.PUT("/faculty/:id", facultyHandler.Update)
		authed.GET("/faculty/:id/mentees", facultyHandler.Mentees)

		authed.POST("/mentorships", middleware.RequireRoles(models.RoleAdmin, models.RoleHOD), facultyHandler.AssignMentor)
		authed.POST("/hod/appointments", middleware.RequireRoles(models.RoleAdmin), facultyHandler.AppointHOD)
		authed.GET("/hod/appointments/:department", facultyHandler.CurrentHOD)

		authed.GET("/meetings", meetingHandler.List)
		authed.POST("/meetings", middleware.RequireRoles(models.RoleFaculty), meetingHandler.CreateAsFaculty)
		authed.POST("/hod/meetings", middleware.RequireRoles(models.RoleHOD), meetingHandler.CreateAsHOD)
		authed.GET("/meetings/:id", meetingHandler.Get)
		authed.POST("/meetings/:id/cancel", meetingHandler.Cancel)
		authed.POST("/meetings/:id/complete", meetingHandler.Complete)
		authed.PUT("/meetings/:id/review", meetingHandler.Review)

		authed.POST("/requests", requestHandler.Create)
		authed.GET("/requests", requestHandler.List)
		authed.GET("/requests/:id", requestHandler.Get)
		authed.PUT("/requests/:id/decision", requestHandler.Decide)

		authed.POST("/messages", messageHandler.Send)
		authed.GET("/messages", messageHandler.List)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
