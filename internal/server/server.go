package server

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/inkbase/inkbase/internal/audit"
	"github.com/inkbase/inkbase/internal/config"
	"github.com/inkbase/inkbase/internal/dispatch"
	"github.com/inkbase/inkbase/internal/ratelimit"
	"github.com/inkbase/inkbase/internal/repository"
	"github.com/inkbase/inkbase/internal/service"
)

// Server owns the HTTP surface: router, middleware and handlers. Every
// collaborator is injected; the entry point owns their lifecycles.
type Server struct {
	cfg         *config.Config
	authService *service.AuthService
	notes       *repository.NoteRepository
	noteTypes   *repository.NoteTypeRepository
	blog        *repository.BlogRepository
	flags       *repository.FlagRepository
	tasks       *repository.TaskRepository
	guestbook   *repository.GuestbookRepository
	dispatcher  *dispatch.Dispatcher
	limiter     *ratelimit.RateLimiter
	auditLogger *audit.Logger
	log         zerolog.Logger
}

type Deps struct {
	Config      *config.Config
	AuthService *service.AuthService
	Notes       *repository.NoteRepository
	NoteTypes   *repository.NoteTypeRepository
	Blog        *repository.BlogRepository
	Flags       *repository.FlagRepository
	Tasks       *repository.TaskRepository
	Guestbook   *repository.GuestbookRepository
	Dispatcher  *dispatch.Dispatcher
	Limiter     *ratelimit.RateLimiter
	AuditLogger *audit.Logger
	Log         zerolog.Logger
}

// New creates the server from its dependencies
func New(deps Deps) *Server {
	return &Server{
		cfg:         deps.Config,
		authService: deps.AuthService,
		notes:       deps.Notes,
		noteTypes:   deps.NoteTypes,
		blog:        deps.Blog,
		flags:       deps.Flags,
		tasks:       deps.Tasks,
		guestbook:   deps.Guestbook,
		dispatcher:  deps.Dispatcher,
		limiter:     deps.Limiter,
		auditLogger: deps.AuditLogger,
		log:         deps.Log.With().Str("component", "server").Logger(),
	}
}

// Router builds the gin engine with all routes and middleware attached
func (s *Server) Router() *gin.Engine {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(s.cors())
	router.Use(s.auth(false))
	router.Use(s.maintenanceGate())

	router.GET("/healthz", s.handleHealth)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", s.rateLimit("register"), s.handleRegister)
		authGroup.POST("/login", s.rateLimit("login"), s.handleLogin)
		authGroup.GET("/me", s.auth(true), s.handleMe)
	}

	notes := router.Group("/notes", s.auth(true))
	{
		notes.GET("", s.handleListNotes)
		notes.POST("", s.handleCreateNote)
		notes.GET("/:id", s.handleGetNote)
		notes.PUT("/:id", s.handleUpdateNote)
		notes.DELETE("/:id", s.handleDeleteNote)
	}

	noteTypes := router.Group("/note-types", s.auth(true))
	{
		noteTypes.GET("", s.handleListNoteTypes)
		noteTypes.POST("", s.handleCreateNoteType)
		noteTypes.GET("/:id", s.handleGetNoteType)
		noteTypes.PUT("/:id", s.handleUpdateNoteType)
		noteTypes.DELETE("/:id", s.handleDeleteNoteType)
	}

	blog := router.Group("/blog")
	{
		blog.GET("", s.handleListPosts)
		blog.GET("/:slug", s.handleGetPost)
		blog.POST("", s.auth(true), s.handleCreatePost)
		blog.PUT("/:slug", s.auth(true), s.handleUpdatePost)
		blog.DELETE("/:slug", s.auth(true), s.handleDeletePost)
	}

	flags := router.Group("/feature-flags")
	{
		flags.GET("", s.handleGetFlags)
		flags.PUT("/:id", s.auth(true), s.requireAdmin(), s.handleUpdateFlag)
		flags.POST("/reset", s.auth(true), s.requireAdmin(), s.handleResetFlags)
	}

	tasks := router.Group("/tasks", s.auth(true))
	{
		tasks.GET("", s.handleListTasks)
		tasks.GET("/:id", s.handleGetTask)
		tasks.POST("/schedule", s.handleScheduleTask)
		tasks.POST("/welcome-email", s.handleScheduleWelcomeEmail)
	}

	// Webhook is unauthenticated; the signature check stands in for auth
	router.POST("/qstash/webhook", s.handleWebhook)

	guestbook := router.Group("/guestbook")
	{
		guestbook.GET("", s.handleListGuestbook)
		guestbook.POST("", s.handleAddGuestbookEntry)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	respond(c, 200, gin.H{"status": "ok"})
}
