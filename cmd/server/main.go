package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/ai"
	"github.com/joshshaloo/project-unify-sub000/internal/api"
	"github.com/joshshaloo/project-unify-sub000/internal/config"
	"github.com/joshshaloo/project-unify-sub000/internal/email"
	"github.com/joshshaloo/project-unify-sub000/internal/repository/mongo"
	"github.com/joshshaloo/project-unify-sub000/internal/service"
	"github.com/joshshaloo/project-unify-sub000/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Project Unify API
// @version 1.0
// @description API for youth soccer club management and AI session planning.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("Starting Project Unify server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureMembershipIndexes(ctx, appDB.Collection("memberships"))
		mongo.EnsureTeamIndexes(ctx, appDB.Collection("teams"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		mongo.EnsureMagicLinkIndexes(ctx, appDB.Collection("magic_links"))
		mongo.EnsureInvitationIndexes(ctx, appDB.Collection("invitations"))
		mongo.EnsureDrillIndexes(ctx, appDB.Collection("drills"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	clubRepo := mongo.NewMongoClubRepository(appDB)
	membershipRepo := mongo.NewMongoMembershipRepository(appDB)
	teamRepo := mongo.NewMongoTeamRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	magicLinkRepo := mongo.NewMongoMagicLinkRepository(appDB)
	invitationRepo := mongo.NewMongoInvitationRepository(appDB)
	drillRepo := mongo.NewMongoDrillRepository(appDB)
	txRunner := mongo.NewTransactionRunner(dbClient)

	// One-shot cleanup of stale login tokens left over from previous runs.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if removed, err := magicLinkRepo.DeleteExpired(ctx, time.Now()); err != nil {
			log.Printf("WARN: Magic link cleanup failed: %v", err)
		} else if removed > 0 {
			log.Printf("Removed %d expired magic links", removed)
		}
	}()

	// --- Initialize Providers ---
	mailer := email.NewSMTPMailer(cfg.Email, cfg.App.BaseURL)
	workflowClient := ai.NewN8NClient(cfg.N8N.BaseURL, cfg.N8N.Timeout)
	planGenerator := ai.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, membershipRepo, magicLinkRepo, mailer, fileStorage, cfg.JWT.Secret, cfg.JWT.Expiration)
	clubService := service.NewClubService(clubRepo, membershipRepo, invitationRepo, userRepo, txRunner, mailer, fileStorage)
	teamService := service.NewTeamService(teamRepo, membershipRepo)
	sessionService := service.NewSessionService(sessionRepo, teamRepo, membershipRepo)
	drillService := service.NewDrillService(drillRepo, membershipRepo)
	aiService := service.NewAIService(workflowClient, planGenerator, sessionRepo, teamRepo, membershipRepo)

	// --- Initialize Gin Engine ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, api.RouterConfig{
		JWTSecret:    cfg.JWT.Secret,
		SessionTTL:   cfg.JWT.Expiration,
		CookieSecure: cfg.App.Environment == "production",
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		PingDB: func(ctx context.Context) error {
			return mongo.Ping(ctx, dbClient)
		},
	}, authService, clubService, teamService, sessionService, drillService, aiService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // generation requests hold the connection
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
