package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/insight-platform/internal/ai"
	"github.com/suPer8Hu/insight-platform/internal/common"
	"github.com/suPer8Hu/insight-platform/internal/config"
	"github.com/suPer8Hu/insight-platform/internal/httpapi/handlers"
	"github.com/suPer8Hu/insight-platform/internal/httpapi/middleware"
	"github.com/suPer8Hu/insight-platform/internal/store/rabbitmq"
	"github.com/suPer8Hu/insight-platform/internal/store/redisstore"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, provider ai.Provider, pub *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, rds, provider, pub)

	r.GET("/ping", h.Ping)

	// users + auth
	r.POST("/users", h.CreateUser)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	r.POST("/auth/logout", h.Logout)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(db, cfg.JWTSecret))

	authGroup.GET("/me", h.Me)
	authGroup.GET("/users/:id", h.GetUserByID)

	// reports (read-only; ingestion happens elsewhere)
	authGroup.GET("/reports/:domain", h.ListReports)
	authGroup.GET("/reports/:domain/latest", h.LatestReport)

	// operations logs
	authGroup.GET("/operations/changelogs", h.ListChangeLogs)
	authGroup.GET("/operations/auditlogs", h.ListAuditLogs)

	// dimensional analysis results
	authGroup.POST("/analysis/latest", h.LatestAnalysis)

	// report QA (RAG)
	authGroup.POST("/qa/init", h.InitChat)
	authGroup.GET("/qa/stream/:qa_id", h.StreamAnswer)
	authGroup.POST("/qa/async", h.InitChatAsync)
	authGroup.GET("/qa/turns/:qa_id", h.GetTurn)
	authGroup.GET("/qa/history", h.ChatHistory)

	return r
}
