package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/zwaTOx/MultiTasker/internal/api"
	"github.com/zwaTOx/MultiTasker/internal/api/handlers"
	"github.com/zwaTOx/MultiTasker/internal/auth"
	"github.com/zwaTOx/MultiTasker/internal/category"
	"github.com/zwaTOx/MultiTasker/internal/config"
	"github.com/zwaTOx/MultiTasker/internal/invite"
	"github.com/zwaTOx/MultiTasker/internal/mailer"
	"github.com/zwaTOx/MultiTasker/internal/membership"
	"github.com/zwaTOx/MultiTasker/internal/policy"
	"github.com/zwaTOx/MultiTasker/internal/projects"
	"github.com/zwaTOx/MultiTasker/internal/ratelimit"
	"github.com/zwaTOx/MultiTasker/internal/storage"
	"github.com/zwaTOx/MultiTasker/internal/tasks"
	"github.com/zwaTOx/MultiTasker/internal/token"
	"github.com/zwaTOx/MultiTasker/internal/users"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "development" {
		log.SetLevel(log.DebugLevel)
	}

	// Create database if it doesn't exist
	rootDb, err := storage.NewDB(storage.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   "",
	})
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	if _, err = rootDb.Exec("CREATE DATABASE IF NOT EXISTS " + cfg.Database.DBName); err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	rootDb.Close()

	db, err := storage.NewDB(storage.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rateLimiter, err := ratelimit.NewRateLimiter(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	defer rateLimiter.Close()

	sec, err := token.NewSecurityContext(cfg.JWT.Secret, cfg.JWT.Algorithm)
	if err != nil {
		log.Fatalf("Failed to configure token signing: %v", err)
	}
	issuer := token.NewIssuer(sec, cfg.JWT.SessionTTL, cfg.JWT.InviteTTL)
	codes := token.NewResetCodes(db, nil)

	userRepo := users.NewRepo(db)
	projectRepo := projects.NewRepo(db)
	categoryRepo := category.NewRepo(db)
	members := membership.NewStore(db)
	guard := policy.NewGuard(db, members)
	smtp := mailer.NewSMTP(cfg.SMTP.SenderEmail, cfg.SMTP.SenderPassword)
	invites := invite.NewWorkflow(guard, members, userRepo, projectRepo, issuer, smtp, cfg.Server.BaseURL)
	taskEngine := tasks.NewEngine(db)

	router := api.SetupRouter(handlers.Deps{
		Users:      userRepo,
		Projects:   projectRepo,
		Categories: categoryRepo,
		Members:    members,
		Guard:      guard,
		Issuer:     issuer,
		Codes:      codes,
		Invites:    invites,
		Tasks:      taskEngine,
		Hasher:     auth.NewHasher(),
		Recovery:   smtp,
	}, issuer, rateLimiter)

	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
