package domain

type UserRole string

const (
	Owner  UserRole = "owner"
	Viewer UserRole = "viewer"
)

type TokenPayload struct {
	Subject string
	Role    UserRole
}

func (p *TokenPayload) CanWrite() bool {
	return p != nil && p.Role == Owner
}
