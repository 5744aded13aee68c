package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/insight-platform/internal/auth"
	"github.com/suPer8Hu/insight-platform/internal/common"
)

type loginReq struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	pair, err := h.AuthSvc.Login(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// one message for unknown account, wrong password and frozen
			// account alike
			common.Fail(c, http.StatusUnauthorized, 40110, "invalid credentials")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "internal error")
		return
	}

	common.OK(c, pair)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	pair, err := h.AuthSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshInvalid) {
			common.Fail(c, http.StatusUnauthorized, 40111, "refresh token invalid or expired")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "internal error")
		return
	}

	common.OK(c, pair)
}

func (h *Handler) Logout(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if err := h.AuthSvc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "internal error")
		return
	}

	common.OK(c, nil)
}
