package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/agent"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/agent/agents"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/config"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/middleware"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/storage"

	authRepo "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/auth/repository"
	authService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/auth/service"

	sessionHttp "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/delivery/http"
	sessionRepo "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/repository"
	sessionService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/service"

	liveQueryHttp "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/livequery/delivery/http"
	liveQueryService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/livequery/service"

	portalHttp "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/portal/delivery/http"
	portalService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/portal/service"

	chatHttp "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/delivery/http"
	chatRepo "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/repository"
	chatService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/service"

	searchHttp "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/search/delivery/http"
	searchService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/search/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	docstoreNamespace = "campussync"
	minSweepInterval  = time.Minute
)

type Server struct {
	engine    *gin.Engine
	store     docstore.Store
	registry  *sessionService.Registry
	scheduler *agent.Scheduler
	gemini    *chatService.GeminiClient
	cancel    context.CancelFunc
}

// NewServer wires every module. db and redisClient may be nil; without both the session layer and
// the feeds run on fixture data.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{cancel: cancel}

	var store docstore.Store
	if db != nil && redisClient != nil {
		redisStore, err := docstore.NewRedisStore(redisClient, docstoreNamespace)
		if err != nil {
			cancel()
			return nil, err
		}
		store = redisStore
		s.store = store
		log.Println("✅ Remote backend configured, sessions use the credential database")
	} else {
		log.Println("⚠️ Backend not configured, running in mock mode")
	}

	sessionAuth := middleware.NewSessionAuth(cfg.JWTSecret, cfg.SessionTokenTTL)

	// Session
	var federated sessionHttp.FederatedURLProvider
	var factory sessionService.BackendFactory
	if store != nil {
		var google authService.GoogleExchanger
		if cfg.GoogleConfigured() {
			google = authService.NewGoogleExchanger(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		}
		authSvc := authService.NewAuthService(authRepo.NewCredentialRepository(db), google)
		signedIn := authRepo.NewSignedInStore(redisClient, cfg.SessionTokenTTL)
		federated = authSvc

		factory = func(sessionID string) sessionService.Backend {
			return sessionService.NewRemoteBackend(authService.NewClient(authSvc, signedIn, sessionID), store)
		}
	} else {
		flags := sessionRepo.NewFlagStore(redisClient, cfg.SessionTokenTTL)
		factory = func(sessionID string) sessionService.Backend {
			return sessionService.NewFixtureBackend(flags, sessionID)
		}
	}
	s.registry = sessionService.NewRegistry(factory, cfg.SessionIdleTTL)
	go s.registry.StartSweeper(ctx, max(cfg.SessionIdleTTL/2, minSweepInterval))
	sessionHandler := sessionHttp.NewSessionHandler(s.registry, sessionAuth, federated)

	// Live queries
	feeds := liveQueryService.NewFeeds(store, cfg.MockDelay, liveQueryService.DefaultResubscribeBackoff)
	liveQueryHandler := liveQueryHttp.NewLiveQueryHandler(feeds, s.registry)

	// Portal writes
	var images storage.ImageStorage
	if cfg.CloudinaryConfigured() {
		cld, err := storage.NewCloudinaryStorage(storage.CloudinaryOptions{
			CloudName:  cfg.CloudinaryCloudName,
			APIKey:     cfg.CloudinaryAPIKey,
			APISecret:  cfg.CloudinaryAPISecret,
			RootFolder: cfg.CloudinaryUploadFolder,
		})
		if err != nil {
			log.Printf("⚠️ Cloudinary disabled: %v", err)
		} else {
			images = cld
		}
	}
	portalSvc := portalService.NewPortalService(store, images)

	// Chat
	var chatSvc chatService.ChatService
	if cfg.ChatConfigured() {
		gemini, err := chatService.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("⚠️ Gemini unavailable, chat runs in demo mode: %v", err)
		} else {
			s.gemini = gemini
			chatSvc = chatService.NewChatService(gemini)
			log.Printf("🤖 Chat using Gemini model %s", cfg.GeminiModel)
		}
	}
	if chatSvc == nil {
		chatSvc = chatService.NewFixtureService(cfg.ChatMockDelay)
	}
	chatHandler := chatHttp.NewChatHandler(chatSvc, chatRepo.NewRateLimiter(redisClient), cfg.ChatRateLimit)

	// Search
	var engine searchService.Engine
	if cfg.SearchConfigured() {
		meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		engine = searchService.NewMeiliEngine(meiliClient)
		if store != nil {
			go searchService.NewMirror(engine, store, liveQueryService.DefaultResubscribeBackoff).Run(ctx)
		}
	}
	searchHandler := searchHttp.NewSearchHandler(engine, cfg.MeiliSearchHost, s.registry)

	// Digest agent
	if store != nil && s.gemini != nil {
		s.scheduler = agent.NewScheduler()
		digestCfg := agents.DefaultDigestConfig()
		digestCfg.Schedule = cfg.DigestSchedule
		if err := s.scheduler.RegisterAgent(agents.NewDigestAgent(store, redisClient, s.gemini, digestCfg)); err != nil {
			log.Printf("⚠️ Digest agent disabled: %v", err)
		}
		s.scheduler.Start()
	}
	var digests portalHttp.DigestRunner
	if s.scheduler != nil {
		digests = s.scheduler
	}
	portalHandler := portalHttp.NewPortalHandler(portalSvc, s.registry, digests)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz"},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "remote": store != nil})
	})

	api := router.Group("/api")

	// Public routes
	api.POST("/session", sessionHandler.Create)

	protected := api.Group("")
	protected.Use(sessionAuth.RequireSession())
	{
		session := protected.Group("/session")
		{
			session.GET("", sessionHandler.GetState)
			session.GET("/ws", sessionHandler.HandleWebSocket)
			session.POST("/signup", sessionHandler.SignUp)
			session.POST("/signin", sessionHandler.SignIn)
			session.POST("/signout", sessionHandler.SignOut)
			session.POST("/clear-error", sessionHandler.ClearError)
			session.GET("/federated/url", sessionHandler.FederatedURL)
			session.POST("/federated", sessionHandler.SignInFederated)
		}

		// Announcement routes
		protected.GET("/announcements", liveQueryHandler.ListAnnouncements)
		protected.GET("/announcements/ws", liveQueryHandler.StreamAnnouncements)
		protected.POST("/announcements", portalHandler.CreateAnnouncement)
		protected.POST("/announcements/:id/read", portalHandler.MarkAnnouncementRead)

		// Assignment routes
		protected.GET("/assignments", liveQueryHandler.ListAssignments)
		protected.GET("/assignments/ws", liveQueryHandler.StreamAssignments)
		protected.POST("/assignments", portalHandler.CreateAssignment)
		protected.POST("/assignments/:id/complete", portalHandler.MarkAssignmentComplete)

		// Profile routes
		protected.PUT("/profile", portalHandler.SaveProfile)
		protected.GET("/courses", portalHandler.Courses)
		protected.GET("/digests/latest", portalHandler.LatestDigest)
		protected.POST("/digests/run", portalHandler.RunDigest)

		chat := protected.Group("/chat")
		{
			chat.GET("/status", chatHandler.Status)
			chat.POST("", chatHandler.SendMessage)
			chat.POST("/study-plan", chatHandler.StudyPlan)
			chat.POST("/summarize", chatHandler.Summarize)
		}

		protected.GET("/search/token", searchHandler.Token)
	}

	s.engine = router
	return s, nil
}

// Store is the document store, nil in mock mode.
func (s *Server) Store() docstore.Store {
	return s.store
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Close stops background workers and every open session.
func (s *Server) Close() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.registry.Close()
	if s.gemini != nil {
		s.gemini.Close()
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
