package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrDevAuthDisabled = errors.New("dev auth disabled")
	ErrInvalidUserID   = errors.New("invalid user id")
)

const (
	devUserID      = "dev-user"
	maxUserIDRunes = 128
)

// Service выпускает и проверяет JWT (HS256)
type Service struct {
	config *config.Config
	now    func() time.Time
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg, now: time.Now}
}

// SetClock overrides the wall clock (tests).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SignInDev выдаёт dev-токен для произвольного user_id.
// Доступна только в AUTH_MODE=dev.
func (s *Service) SignInDev(req DevAuthRequest) (*DevAuthResponse, error) {
	if s.config.AuthMode != config.AuthModeDev {
		return nil, ErrDevAuthDisabled
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = devUserID
	}
	if len([]rune(userID)) > maxUserIDRunes {
		return nil, ErrInvalidUserID
	}

	ttl := s.ttl()
	accessToken, err := s.generateJWT(userID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dev JWT: %w", err)
	}

	return &DevAuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      userID,
	}, nil
}

func (s *Service) ttl() time.Duration {
	if s.config.JWTTTLMinutes <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(s.config.JWTTTLMinutes) * time.Minute
}

func (s *Service) generateJWT(userID string, ttl time.Duration) (string, error) {
	now := s.now()

	claims := jwt.MapClaims{
		"sub": userID,
		"iss": s.config.JWTIssuer,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT проверяет подпись, срок и issuer; возвращает sub.
func (s *Service) VerifyJWT(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.JWTIssuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || strings.TrimSpace(sub) == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
