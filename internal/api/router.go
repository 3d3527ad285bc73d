package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/cache"
	"github.com/hearthforum/hearth/internal/db"
	"github.com/hearthforum/hearth/internal/forum"
	"github.com/hearthforum/hearth/internal/realtime"
	"github.com/hearthforum/hearth/pkg/config"
	"github.com/hearthforum/hearth/pkg/logging"
)

// EventBus is what the router needs from the broadcast transport: publishing
// from writes and subscribing for streams.
type EventBus interface {
	forum.Publisher
	realtime.Subscriber
}

// Router sets up API routes
type Router struct {
	db       *db.DB
	cache    *cache.Cache
	resolver *auth.Resolver
	limiter  *writeLimiter

	topicAPI   *TopicAPI
	commentAPI *CommentAPI
	voteAPI    *VoteAPI
	reportAPI  *ReportAPI
	userAPI    *UserAPI
	streamAPI  *StreamAPI

	logger *zap.Logger
}

// NewRouter creates a new API router wiring every service onto the bus.
func NewRouter(database *db.DB, redisCache *cache.Cache, bus EventBus, cfg *config.Config) *Router {
	topics := forum.NewTopicService(database.DB, cfg.Forum.AvatarBaseURL)
	comments := forum.NewCommentService(database.DB, bus, cfg.Forum.AvatarBaseURL)
	votes := forum.NewVoteService(database.DB, bus)
	reports := forum.NewReportService(database.DB, cfg.Forum.ReasonMaxLen)
	users := forum.NewUserService(database.DB, cfg.Forum.AvatarBaseURL)

	return &Router{
		db:         database,
		cache:      redisCache,
		resolver:   auth.NewResolver(database.DB),
		limiter:    newWriteLimiter(cfg.Forum.WriteRateLimit, cfg.Forum.WriteRateBurst),
		topicAPI:   NewTopicAPI(topics, comments),
		commentAPI: NewCommentAPI(comments),
		voteAPI:    NewVoteAPI(votes),
		reportAPI:  NewReportAPI(reports),
		userAPI:    NewUserAPI(users),
		streamAPI:  NewStreamAPI(comments, bus),
		logger:     logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(auth.Middleware(r.resolver))

	engine.GET("/health", r.healthHandler)

	api := engine.Group("/api")
	{
		api.GET("/categories", r.topicAPI.ListCategories)
		api.GET("/topics", r.topicAPI.ListTopics)
		api.GET("/topics/:id", r.topicAPI.GetTopic)
		api.GET("/topics/:id/stream", r.streamAPI.StreamTopic)
		api.GET("/users/:username", r.userAPI.GetProfile)

		writes := api.Group("")
		writes.Use(auth.RequireSession(), r.limiter.middleware())
		{
			writes.POST("/topics", r.topicAPI.CreateTopic)
			writes.POST("/topics/:id/comments", r.commentAPI.CreateComment)
			writes.DELETE("/comments/:id", r.commentAPI.DeleteComment)
			writes.POST("/votes", r.voteAPI.CastVote)
			writes.POST("/reports", r.reportAPI.SubmitReport)
			writes.PUT("/profile", r.userAPI.UpdateProfile)
		}

		admin := api.Group("/admin")
		admin.Use(auth.RequireSession())
		{
			admin.GET("/reports", r.reportAPI.ListReports)
			admin.PUT("/reports/:id", r.reportAPI.SetReportStatus)
			admin.GET("/users", r.userAPI.ListUsers)
			admin.PUT("/users/:id/role", r.userAPI.UpdateRole)
		}
	}
}

// healthHandler reports database and cache health.
func (r *Router) healthHandler(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := r.db.Health(ctx); err != nil {
		health["status"] = "degraded"
		health["database"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		health["database"] = "ok"
	}

	if r.cache != nil {
		if err := r.cache.Health(ctx); err != nil {
			health["status"] = "degraded"
			health["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			health["cache"] = "ok"
		}
	}

	c.JSON(status, health)
}
