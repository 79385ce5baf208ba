package ports

import "github.com/sm8ta/ridewise/internal/core/domain"

type TokenService interface {
	VerifyToken(token string) (*domain.TokenPayload, error)
}
