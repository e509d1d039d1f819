package httpserver

import (
	"context"
	"time"

	"todo-service/internal/config"
	"todo-service/internal/denylist"
	"todo-service/internal/handlers"
	"todo-service/internal/intelligence"
	"todo-service/internal/middleware"
	"todo-service/internal/monitoring"
	"todo-service/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	Config      *config.Config
	DB          *gorm.DB
	AuthService services.AuthService
	TaskService services.TaskService
	Denylist    denylist.Denylist
	AIProvider  intelligence.Provider
	RateLimiter *middleware.RateLimiter
}

// NewRouter assembles the full route table. Protected routes run the
// authentication middleware before their handler.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware())
	}

	registerHandler := handlers.NewRegisterHandler(deps.DB, deps.AuthService)
	loginHandler := handlers.NewLoginHandler(deps.DB, deps.AuthService)
	logoutHandler := handlers.NewLogoutHandler(deps.Denylist)
	taskHandler := handlers.NewTaskHandler(deps.DB, deps.TaskService)
	generateHandler := handlers.NewGenerateHandler(deps.AIProvider)

	router.POST("/register", registerHandler.Register)
	router.POST("/login", loginHandler.Login)

	router.GET("/health", monitoring.HealthHandler(healthChecks(deps)))
	router.GET("/metrics", monitoring.MetricsHandler())

	authRequired := middleware.Authenticate(deps.DB, deps.AuthService, deps.Denylist)

	router.GET("/logout", authRequired, logoutHandler.Logout)
	router.POST("/add-task", authRequired, taskHandler.AddTask)
	router.GET("/task", authRequired, taskHandler.GetTasks)
	router.GET("/remove-task/:id", authRequired, taskHandler.DeleteTask)
	router.PATCH("/mark-done/:id", authRequired, taskHandler.MarkDone)
	router.PUT("/edit-task/:id", authRequired, taskHandler.EditTask)
	router.POST("/generate-task", authRequired, generateHandler.GenerateTasks)

	return router
}

func healthChecks(deps Deps) map[string]monitoring.HealthCheckFunc {
	checks := map[string]monitoring.HealthCheckFunc{
		"database": func(ctx context.Context) error {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	if redisDenylist, ok := deps.Denylist.(*denylist.Redis); ok {
		checks["denylist"] = func(ctx context.Context) error {
			return redisDenylist.Health()
		}
	}

	return checks
}
