package api

import (
	"context"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries the cross-cutting values SetupRoutes needs besides
// the services themselves.
type RouterConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool
	Version      string
	Environment  string
	PingDB       func(ctx context.Context) error
}

func SetupRoutes(
	router *gin.Engine,
	cfg RouterConfig,
	authService service.AuthService,
	clubService service.ClubService,
	teamService service.TeamService,
	sessionService service.SessionService,
	drillService service.DrillService,
	aiService service.AIService,
) {
	authHandler := NewAuthHandler(authService, cfg.CookieSecure, cfg.SessionTTL)
	clubHandler := NewClubHandler(clubService)
	teamHandler := NewTeamHandler(teamService)
	sessionHandler := NewSessionHandler(sessionService)
	drillHandler := NewDrillHandler(drillService)
	aiHandler := NewAIHandler(aiService)
	healthHandler := NewHealthHandler(cfg.PingDB, cfg.Version, cfg.Environment)

	authMiddleware := AuthMiddleware(cfg.JWTSecret)

	// Health endpoint lives outside the versioned API for load balancers.
	router.GET("/api/health", healthHandler.Check)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/health", healthHandler.Check)

		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/magic-link", authHandler.RequestMagicLink)
			authGroup.GET("/verify", authHandler.VerifyMagicLink)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me", authHandler.UpdateProfile)
		protected.POST("/me/avatar-upload-url", authHandler.AvatarUploadURL)
		protected.GET("/me/avatar-url", authHandler.AvatarDownloadURL)
		protected.POST("/auth/onboarding", clubHandler.CompleteOnboarding)

		// --- Clubs ---
		clubGroup := protected.Group("/clubs")
		{
			clubGroup.POST("", clubHandler.CreateClub)
			clubGroup.GET("", clubHandler.ListMyClubs)
			clubGroup.GET("/:clubId", clubHandler.GetClub)
			clubGroup.PUT("/:clubId", clubHandler.UpdateClub)
			clubGroup.GET("/:clubId/members", clubHandler.ListMembers)
			clubGroup.PUT("/:clubId/members/:memberId/status", clubHandler.SetMemberStatus)
			clubGroup.POST("/:clubId/logo-upload-url", clubHandler.LogoUploadURL)
			clubGroup.GET("/:clubId/logo-url", clubHandler.LogoDownloadURL)

			// --- Invitations (club-scoped management) ---
			clubGroup.POST("/:clubId/invitations", clubHandler.CreateInvitation)
			clubGroup.GET("/:clubId/invitations", clubHandler.ListInvitations)
			clubGroup.DELETE("/:clubId/invitations/:invitationId", clubHandler.RevokeInvitation)

			// --- Teams ---
			clubGroup.POST("/:clubId/teams", teamHandler.CreateTeam)
			clubGroup.GET("/:clubId/teams", teamHandler.ListTeams)

			// --- Sessions ---
			clubGroup.POST("/:clubId/sessions", sessionHandler.CreateSession)
			clubGroup.GET("/:clubId/sessions", sessionHandler.ListSessions)

			// --- Drill library ---
			clubGroup.POST("/:clubId/drills", drillHandler.CreateDrill)
			clubGroup.GET("/:clubId/drills", drillHandler.ListDrills)
		}

		// Accepting an invitation is user-scoped, not club-scoped; the club
		// comes from the token.
		protected.POST("/invitations/accept", clubHandler.AcceptInvitation)

		teamGroup := protected.Group("/teams")
		{
			teamGroup.GET("/:teamId", teamHandler.GetTeam)
			teamGroup.PUT("/:teamId", teamHandler.UpdateTeam)
			teamGroup.GET("/:teamId/sessions", sessionHandler.ListTeamSessions)
			teamGroup.POST("/:teamId/players", teamHandler.AddPlayer)
			teamGroup.DELETE("/:teamId/players/:playerId", teamHandler.RemovePlayer)
		}

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.GET("/:sessionId", sessionHandler.GetSession)
			sessionGroup.PUT("/:sessionId/status", sessionHandler.UpdateStatus)
			sessionGroup.DELETE("/:sessionId", sessionHandler.DeleteSession)
		}

		drillGroup := protected.Group("/drills")
		{
			drillGroup.GET("/:drillId", drillHandler.GetDrill)
			drillGroup.PUT("/:drillId", drillHandler.UpdateDrill)
			drillGroup.DELETE("/:drillId", drillHandler.DeleteDrill)
		}

		aiGroup := protected.Group("/ai")
		{
			aiGroup.POST("/sessions", aiHandler.GenerateSession)
			aiGroup.POST("/drills/suggest", aiHandler.SuggestDrills)
			aiGroup.GET("/status", aiHandler.ProviderStatus)
		}
	}
}
