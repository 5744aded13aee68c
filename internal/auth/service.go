package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/suPer8Hu/insight-platform/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned for every login failure: unknown
	// phone number, wrong password, frozen account. One message, so callers
	// cannot enumerate which accounts exist.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrRefreshInvalid covers unknown, expired and already-consumed refresh
	// tokens alike.
	ErrRefreshInvalid = errors.New("auth: refresh token invalid or expired")
)

// RefreshStore holds opaque refresh tokens server-side with a TTL.
// Redeem must be atomic: of two concurrent redemptions of the same token,
// exactly one may succeed.
type RefreshStore interface {
	SaveRefresh(ctx context.Context, token string, userID uint64, ttl time.Duration) error
	// RedeemRefresh atomically reads and deletes the mapping. ok=false when
	// the token is absent or expired.
	RedeemRefresh(ctx context.Context, token string) (userID uint64, ok bool, err error)
	DeleteRefresh(ctx context.Context, token string) error
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type Service struct {
	db         *gorm.DB
	store      RefreshStore
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(db *gorm.DB, store RefreshStore, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Service{db: db, store: store, jwtSecret: jwtSecret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *Service) Login(ctx context.Context, phoneNumber, password string) (*TokenPair, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("phone_number = ? AND is_deleted = ?", phoneNumber, false).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(ctx, user.ID)
}

// Refresh redeems a refresh token and rotates the pair: the old token is
// destroyed before the new one is issued, so a replayed token fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, ok, err := s.store.RedeemRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRefreshInvalid
	}
	return s.issuePair(ctx, userID)
}

// Logout destroys the refresh token. Deleting an absent token is not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.store.DeleteRefresh(ctx, refreshToken)
}

func (s *Service) issuePair(ctx context.Context, userID uint64) (*TokenPair, error) {
	access, err := SignAccessToken(userID, s.jwtSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveRefresh(ctx, refresh, userID, s.refreshTTL); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		TokenType:    "bearer",
	}, nil
}

// 32 bytes of entropy, base64url -> 43 chars.
func newRefreshToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
