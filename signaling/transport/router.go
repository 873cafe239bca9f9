package transport

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/kowshik-thatinati/privacy-calls/internal/cryptoutil"
	"github.com/kowshik-thatinati/privacy-calls/internal/log"
	"github.com/kowshik-thatinati/privacy-calls/internal/validation"
	"github.com/kowshik-thatinati/privacy-calls/signaling"
)

const roomIDBytes = 16

// Router serves the room API and mounts the WebSocket upgrade endpoint
type Router struct {
	rooms     signaling.RoomReader
	wsHandler http.HandlerFunc
	engine    *gin.Engine
	logger    *log.Logger
}

func NewRouter(
	rooms signaling.RoomReader,
	wsHandler http.HandlerFunc,
	allowedOrigins []string,
	logger *log.Logger,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Add OpenTelemetry middleware for automatic HTTP tracing
	engine.Use(otelgin.Middleware("signaling"))

	// Configure CORS
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	r := &Router{
		rooms:     rooms,
		wsHandler: wsHandler,
		engine:    engine,
		logger:    logger,
	}

	r.setupRoutes()
	return r
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.healthCheck)
	r.engine.POST("/api/rooms", r.createRoom)
	r.engine.GET("/api/rooms/:roomId", r.roomStatus)
	r.engine.GET("/ws", gin.WrapF(r.wsHandler))
}

func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// createRoom mints an unguessable room id for out-of-band sharing. No
// state is created; rooms come into existence on first join.
func (r *Router) createRoom(c *gin.Context) {
	roomID, err := cryptoutil.RandomToken(roomIDBytes)
	if err != nil {
		r.logger.Error("Failed to mint room id", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create room",
		})
		return
	}

	roomsMinted.Add(c.Request.Context(), 1)
	r.logger.Info("Room id minted", log.String("roomId", roomID))

	c.JSON(http.StatusOK, gin.H{
		"roomId": roomID,
	})
}

func (r *Router) roomStatus(c *gin.Context) {
	var req RoomStatusRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	status, ok := r.rooms.Status(req.RoomID)
	if !ok {
		statusNotFound.Add(c.Request.Context(), 1)
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Room not found",
		})
		return
	}

	statusServed.Add(c.Request.Context(), 1)
	c.JSON(http.StatusOK, status)
}
