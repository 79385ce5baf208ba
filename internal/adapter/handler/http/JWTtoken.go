package http

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

type JWTTokenService struct {
	secretKey []byte
	logger    ports.LoggerPort
}

func NewJWTTokenService(secretKey string, logger ports.LoggerPort) *JWTTokenService {
	return &JWTTokenService{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

// VerifyToken checks an HMAC-signed token carrying "sub" and "role" claims.
func (j *JWTTokenService) VerifyToken(token string) (*domain.TokenPayload, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		j.logger.Error("Failed to parse jwt", map[string]interface{}{
			"error":  err.Error(),
			"method": "VerifyToken",
		})
		return nil, err
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		j.logger.Error("Failed claims from token", map[string]interface{}{
			"method": "VerifyToken",
		})
		return nil, errors.New("failed to verify")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, errors.New("invalid sub claim")
	}

	roleClaimed, ok := claims["role"].(string)
	if !ok {
		return nil, errors.New("invalid role")
	}

	role := domain.UserRole(roleClaimed)
	if role != domain.Owner && role != domain.Viewer {
		j.logger.Warn("Invalid role in token", map[string]interface{}{
			"role":   roleClaimed,
			"method": "VerifyToken",
		})
		return nil, errors.New("invalid role value")
	}

	return &domain.TokenPayload{
		Subject: subject,
		Role:    role,
	}, nil
}

// IssueToken signs a token for subject. Used by the CLI and tests.
func (j *JWTTokenService) IssueToken(subject string, role domain.UserRole) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
	})
	return token.SignedString(j.secretKey)
}
