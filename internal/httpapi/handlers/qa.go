package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/insight-platform/internal/common"
	"github.com/suPer8Hu/insight-platform/internal/qa"
	"gorm.io/gorm"
)

type initChatReq struct {
	MarketplaceID string `json:"marketplace_id" binding:"required"`
	ReportID      string `json:"report_id" binding:"required"`
	Question      string `json:"question" binding:"required"`
}

// InitChat creates a PENDING turn and hands back its id; the client then
// opens the stream endpoint with it.
func (h *Handler) InitChat(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req initChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	turn, err := h.Engine.InitChat(c.Request.Context(), uid, req.MarketplaceID, req.ReportID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, qa.ErrQuestionEmpty):
			common.Fail(c, http.StatusBadRequest, 10008, "question must not be empty")
		case errors.Is(err, qa.ErrContextMissing):
			common.Fail(c, http.StatusNotFound, 40403, "report context missing")
		default:
			common.Fail(c, http.StatusInternalServerError, 50001, "failed to init chat")
		}
		return
	}

	common.OK(c, gin.H{"qa_id": turn.ID})
}

// StreamAnswer streams the model output over SSE. Frames: `chunk` with
// {"content": ...}, then one terminal `done` or `error`. `ping` heartbeats
// keep intermediaries from closing the connection.
func (h *Handler) StreamAnswer(c *gin.Context) {
	if _, ok := userIDFromContext(c); !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	qaID := c.Param("qa_id")
	if qaID == "" {
		common.Fail(c, http.StatusBadRequest, 10009, "qa_id required")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // helpful if behind nginx
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"message\":\"streaming unsupported\"}\n\n")
		return
	}

	writeEvent := func(event string, payload any) {
		b, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"message\":\"json marshal failed\"}\n\n")
			flusher.Flush()
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, b)
		flusher.Flush()
	}

	ctx := c.Request.Context()
	chunks, errs := h.Engine.StreamAnswer(ctx, qaID)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ch, open := <-chunks:
			if !open {
				// drain a terminal error, if any, before declaring DONE
				if err := <-errs; err != nil {
					writeEvent("error", gin.H{"message": streamErrorMessage(err)})
					return
				}
				writeEvent("done", gin.H{"qa_id": qaID})
				return
			}
			writeEvent("chunk", gin.H{"content": ch})

		case <-ticker.C:
			writeEvent("ping", gin.H{"ts": time.Now().Unix()})

		case <-ctx.Done():
			// client disconnected; the engine sees the same ctx and stops
			return
		}
	}
}

func streamErrorMessage(err error) string {
	switch {
	case errors.Is(err, qa.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, qa.ErrContextMissing):
		return "report context missing"
	case errors.Is(err, qa.ErrTurnConsumed):
		return "answer already generated or in progress"
	default:
		return err.Error()
	}
}

// InitChatAsync creates the turn and enqueues answer generation for the
// worker; clients poll GetTurn instead of holding an SSE connection open.
func (h *Handler) InitChatAsync(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async generation disabled")
		return
	}

	var req initChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	turn, err := h.Engine.InitChat(c.Request.Context(), uid, req.MarketplaceID, req.ReportID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, qa.ErrQuestionEmpty):
			common.Fail(c, http.StatusBadRequest, 10008, "question must not be empty")
		case errors.Is(err, qa.ErrContextMissing):
			common.Fail(c, http.StatusNotFound, 40403, "report context missing")
		default:
			common.Fail(c, http.StatusInternalServerError, 50001, "failed to init chat")
		}
		return
	}

	if err := h.Rabbit.PublishAnswerJob(c.Request.Context(), turn.ID); err != nil {
		log.Printf("[InitChatAsync] publish failed qa_id=%s err=%v", turn.ID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
		return
	}

	common.OK(c, gin.H{"qa_id": turn.ID})
}

// GetTurn polls a single turn (async path).
func (h *Handler) GetTurn(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	qaID := c.Param("qa_id")

	turn, err := h.Engine.Turn(c.Request.Context(), qaID)
	if err != nil {
		if errors.Is(err, qa.ErrSessionNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "qa turn not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if turn.UserID != uid {
		// hide existence
		common.Fail(c, http.StatusNotFound, 40404, "qa turn not found")
		return
	}

	common.OK(c, gin.H{"turn": turn})
}

// ChatHistory returns every turn on the report, oldest first, any status.
func (h *Handler) ChatHistory(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	reportID := c.Query("report_id")
	marketplaceID := c.Query("marketplace_id")
	if reportID == "" || marketplaceID == "" {
		common.Fail(c, http.StatusBadRequest, 10007, "report_id and marketplace_id required")
		return
	}

	turns, err := h.Engine.History(c.Request.Context(), uid, marketplaceID, reportID)
	if err != nil && err != gorm.ErrRecordNotFound {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{"turns": turns})
}
