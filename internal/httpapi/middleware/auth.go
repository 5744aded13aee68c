package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/insight-platform/internal/auth"
	"github.com/suPer8Hu/insight-platform/internal/common"
	"github.com/suPer8Hu/insight-platform/internal/models"
	"gorm.io/gorm"
)

const UserIDKey = "user_id"

// AuthRequired verifies the bearer access token and resolves the subject to a
// live account. Each rejection reason gets its own code; all are 401.
func AuthRequired(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			common.Fail(c, http.StatusUnauthorized, 40101, "missing authorization header")
			c.Abort()
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid authentication scheme")
			c.Abort()
			return
		}

		uid, err := auth.ParseAccessToken(token, jwtSecret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40103, "invalid or expired token")
			c.Abort()
			return
		}

		// a valid token is not enough: the subject may have been removed or
		// frozen since issuance
		var user models.User
		if err := db.First(&user, uid).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				common.Fail(c, http.StatusUnauthorized, 40104, "user not found")
			} else {
				common.Fail(c, http.StatusInternalServerError, 20001, "db error")
			}
			c.Abort()
			return
		}
		if user.IsDeleted {
			common.Fail(c, http.StatusUnauthorized, 40105, "user has been deleted")
			c.Abort()
			return
		}
		if !user.IsActive {
			common.Fail(c, http.StatusUnauthorized, 40106, "user is inactive")
			c.Abort()
			return
		}

		c.Set(UserIDKey, uid)
		c.Next()
	}
}
