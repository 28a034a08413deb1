package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/response"
)

// Context keys set by RequireAuth for downstream handlers
const (
	ContextVoterID = "voter_id"
	ContextRole    = "role"
)

// Claims is the JWT payload issued at login
type Claims struct {
	VoterID string `json:"voter_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a JWT for an authenticated voter
func IssueToken(cfg *config.Config, voterID uuid.UUID, role string) (string, error) {
	claims := Claims{
		VoterID: voterID.String(),
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.JWT.ExpiryHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// RequireAuth validates the Bearer token and stores the voter identity on
// the request context.
func RequireAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.UnauthorizedError(c, "authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			response.UnauthorizedError(c, "invalid or expired token")
			c.Abort()
			return
		}

		voterID, err := uuid.Parse(claims.VoterID)
		if err != nil {
			response.UnauthorizedError(c, "invalid token subject")
			c.Abort()
			return
		}

		c.Set(ContextVoterID, voterID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects requests whose token does not carry the given role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, exists := c.Get(ContextRole)
		if !exists || got != role {
			response.ForbiddenError(c, "insufficient privileges")
			c.Abort()
			return
		}
		c.Next()
	}
}

// VoterID extracts the authenticated voter's ID from the context
func VoterID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextVoterID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
