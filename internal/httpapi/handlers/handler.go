package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/insight-platform/internal/ai"
	"github.com/suPer8Hu/insight-platform/internal/analysis"
	"github.com/suPer8Hu/insight-platform/internal/auth"
	"github.com/suPer8Hu/insight-platform/internal/common"
	"github.com/suPer8Hu/insight-platform/internal/config"
	"github.com/suPer8Hu/insight-platform/internal/httpapi/middleware"
	"github.com/suPer8Hu/insight-platform/internal/oplog"
	"github.com/suPer8Hu/insight-platform/internal/qa"
	"github.com/suPer8Hu/insight-platform/internal/report"
	"github.com/suPer8Hu/insight-platform/internal/store/rabbitmq"
	"github.com/suPer8Hu/insight-platform/internal/store/redisstore"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Cfg      config.Config
	AuthSvc  *auth.Service
	Engine   *qa.Engine
	Reports  *report.Repo
	Logs     *oplog.Repo
	Analysis *analysis.Repo
	// Rabbit may be nil; the async QA path is then disabled.
	Rabbit *rabbitmq.Publisher
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, provider ai.Provider, pub *rabbitmq.Publisher) *Handler {
	reports := report.NewRepo(db)
	engine := qa.NewEngine(qa.NewRepo(db), reports, provider, cfg.QAHistoryWindow)
	authSvc := auth.NewService(db, rds, cfg.JWTSecret,
		time.Duration(cfg.AccessTokenTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLDay)*24*time.Hour,
	)

	return &Handler{
		DB:       db,
		Cfg:      cfg,
		AuthSvc:  authSvc,
		Engine:   engine,
		Reports:  reports,
		Logs:     oplog.NewRepo(db),
		Analysis: analysis.NewRepo(db),
		Rabbit:   pub,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
