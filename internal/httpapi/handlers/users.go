package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/insight-platform/internal/auth"
	"github.com/suPer8Hu/insight-platform/internal/common"
	"github.com/suPer8Hu/insight-platform/internal/models"
	"gorm.io/gorm"
)

type createUserReq struct {
	PhoneNumber string  `json:"phone_number" binding:"required"`
	Password    string  `json:"password" binding:"required,min=8"`
	Email       *string `json:"email"`
	Username    *string `json:"username"`
	Nickname    *string `json:"nickname"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	// uniqueness fail-fast; the unique indexes remain the source of truth
	var cnt int64
	if err := h.DB.Model(&models.User{}).Where("phone_number = ?", req.PhoneNumber).Count(&cnt).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if cnt > 0 {
		common.Fail(c, http.StatusBadRequest, 10010, "phone number already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	user := models.User{
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		Username:     req.Username,
		Nickname:     req.Nickname,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10011, "failed to create user (credential may already exist)")
		return
	}

	common.OK(c, gin.H{
		"id":           user.ID,
		"phone_number": user.PhoneNumber,
		"email":        user.Email,
		"username":     user.Username,
	})
}

func (h *Handler) GetUserByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid user id")
		return
	}

	var user models.User
	if err := h.DB.Where("is_deleted = ?", false).First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{
		"id":           user.ID,
		"phone_number": user.PhoneNumber,
		"nickname":     user.Nickname,
		"created_at":   user.CreatedAt,
	})
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{
		"id":           user.ID,
		"phone_number": user.PhoneNumber,
		"email":        user.Email,
		"username":     user.Username,
		"nickname":     user.Nickname,
	})
}
