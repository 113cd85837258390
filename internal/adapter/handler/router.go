package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acadease/backend/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	authHandler      *Auth
	taskHandler      *Task
	aiHandler        *AI
	classroomHandler *Classroom
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, authHandler *Auth, taskHandler *Task, aiHandler *AI, classroomHandler *Classroom) *Router {
	return &Router{
		cfg:              cfg,
		authHandler:      authHandler,
		taskHandler:      taskHandler,
		aiHandler:        aiHandler,
		classroomHandler: classroomHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupTaskRoutes(v1)
	rt.setupAIRoutes(v1)
	rt.setupClassroomRoutes(v1)
}

func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")
	authGroup.POST("/signin", rt.authHandler.SignIn)
	authGroup.POST("/signup", rt.authHandler.SignUp)
	authGroup.POST("/signout", rt.authHandler.SignOut)
	authGroup.GET("/me", rt.authHandler.Me)
}

func (rt *Router) setupTaskRoutes(g *echo.Group) {
	taskGroup := g.Group("/tasks")
	taskGroup.GET("", rt.taskHandler.List)
	taskGroup.POST("", rt.taskHandler.Create)
	taskGroup.DELETE("/:id", rt.taskHandler.Delete)
}

func (rt *Router) setupAIRoutes(g *echo.Group) {
	aiGroup := g.Group("/ai")
	aiGroup.POST("/audio", rt.aiHandler.AnalyzeAudio)
	aiGroup.POST("/image", rt.aiHandler.AnalyzeImage)
	aiGroup.POST("/chat", rt.aiHandler.Chat)
}

func (rt *Router) setupClassroomRoutes(g *echo.Group) {
	cr := g.Group("/classroom")
	cr.GET("/callback", rt.classroomHandler.Callback)

	sessions := cr.Group("/sessions")
	sessions.POST("", rt.classroomHandler.Open)
	sessions.GET("/:id", rt.classroomHandler.Get)
	sessions.DELETE("/:id", rt.classroomHandler.Close)
	sessions.POST("/:id/signin", rt.classroomHandler.SignIn)
	sessions.POST("/:id/courses/refresh", rt.classroomHandler.Refresh)
	sessions.POST("/:id/courses/select", rt.classroomHandler.SelectCourse)
	sessions.POST("/:id/courses/back", rt.classroomHandler.Back)
	sessions.POST("/:id/assignments/toggle", rt.classroomHandler.Toggle)
	sessions.POST("/:id/import", rt.classroomHandler.Import)
	sessions.POST("/:id/signout", rt.classroomHandler.SignOut)
	sessions.POST("/:id/retry", rt.classroomHandler.Retry)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
