package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/apperr"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/controller"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/response"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/service"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/config"
)

var tracer = otel.Tracer("server")

// Server owns the gin engine and its route table.
type Server struct {
	engine *gin.Engine
}

// NewServer builds the engine: CORS and tracing middleware, public identity
// routes, and the session-guarded list/item routes.
func NewServer(cfg config.Config, uc *controller.UserController, tc *controller.TodoController, users service.UserService) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(traceMiddleware())
	engine.Use(corsMiddleware(cfg.CORSOrigin))

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Todo List App!"})
	})

	engine.POST("/register", uc.Register)
	engine.POST("/login", uc.Login)
	engine.POST("/logout", uc.Logout)
	engine.GET("/check-session", uc.CheckSession)

	auth := engine.Group("/", requireSession(users))
	{
		auth.GET("/api/lists", tc.GetLists)
		auth.POST("/api/lists", tc.CreateList)
		auth.PUT("/api/lists/:id", tc.RenameList)

		auth.POST("/list/:id/delete", tc.DeleteList)
		auth.POST("/list/:id/item/new", tc.NewItem)

		auth.POST("/item/:id/toggle", tc.ToggleItem)
		// The frontend historically used both spellings.
		auth.POST("/item/:id/complete", tc.ToggleItem)
		auth.POST("/item/:id/edit", tc.EditItem)
		auth.POST("/item/:id/delete", tc.DeleteItem)
		auth.POST("/item/:id/move", tc.MoveItem)
	}

	return &Server{engine: engine}
}

// Engine exposes the underlying gin engine for http.Server and tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// requireSession resolves the session cookie and injects the caller id, or
// rejects the request with 401. Ownership of the addressed resource is
// checked later, per operation, against current storage state.
func requireSession(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(controller.SessionCookie)
		userID, ok, err := users.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !ok {
			slog.DebugContext(c.Request.Context(), "rejecting request without valid session", "path", c.FullPath())
			response.Error(c, apperr.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(controller.CallerKey, userID)
		c.Next()
	}
}

// corsMiddleware allows the configured browser origin to call the API with
// credentials and answers preflight requests.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// traceMiddleware opens a span per request and threads it through the
// request context so repository spans nest under it.
func traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "server.handleRequest", trace.WithAttributes(
			attribute.String("http.url", c.Request.URL.String()),
			attribute.String("http.method", c.Request.Method),
		))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}
