package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// TokenManager validates platform access tokens and, for local tooling, issues them.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// AppMetadata is the platform-managed section of the token.
type AppMetadata struct {
	Role    string   `json:"role,omitempty"`
	Roles   []string `json:"roles,omitempty"`
	TeamIDs []string `json:"team_ids,omitempty"`
}

// Claims describes the JWT payload issued by the hosting platform.
type Claims struct {
	Role        string      `json:"role,omitempty"`
	Roles       []string    `json:"roles,omitempty"`
	TeamIDs     []string    `json:"team_ids,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

// RawRoles merges every role identifier the token carries.
func (c *Claims) RawRoles() []string {
	var out []string
	for _, r := range []string{c.AppMetadata.Role, c.Role} {
		if strings.TrimSpace(r) != "" {
			out = append(out, r)
		}
	}
	out = append(out, c.AppMetadata.Roles...)
	return append(out, c.Roles...)
}

// Actor maps the claims onto a workflow identity. Unmapped identifiers are
// returned so the caller can log them. A token without any mapped role is a reporter.
func (c *Claims) Actor() (domain.Actor, []string) {
	roles, unknown := domain.ParseRoleSet(c.RawRoles())
	if roles == 0 {
		roles = domain.NewRoleSet(domain.RoleReporter)
	}
	teams := make([]string, 0, len(c.AppMetadata.TeamIDs)+len(c.TeamIDs))
	seen := make(map[string]struct{})
	for _, id := range append(append([]string{}, c.AppMetadata.TeamIDs...), c.TeamIDs...) {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		teams = append(teams, id)
	}
	return domain.Actor{UserID: c.Subject, Roles: roles, TeamIDs: teams}, unknown
}

// GenerateToken signs a token for userID carrying roles and teams. Used by tests and woctl.
func (tm *TokenManager) GenerateToken(userID string, roles, teamIDs []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		AppMetadata: AppMetadata{Roles: roles, TeamIDs: teamIDs},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
