package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

var errNoToken = errors.New("missing_authorization_header")

// roleAliases maps role names used by older tokens.
var roleAliases = map[string]domain.Role{
	"barber": domain.RoleProvider,
	"owner":  domain.RoleAdmin,
}

// AuthMiddleware rejects requests without a valid bearer token. Tokens
// are issued elsewhere; "sub" is the client or barber id and "role" one
// of client, provider or admin.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := parseRequest(c, secret)
		if err != nil {
			httperr.Write(c, http.StatusUnauthorized, err.Error(), "authentication required")
			c.Abort()
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is sent and lets
// anonymous requests through. A malformed token is still rejected.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := parseRequest(c, secret)
		if errors.Is(err, errNoToken) {
			c.Next()
			return
		}
		if err != nil {
			httperr.Write(c, http.StatusUnauthorized, err.Error(), "authentication required")
			c.Abort()
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if ok {
			for _, r := range roles {
				if actor.Role == r {
					c.Next()
					return
				}
			}
		}
		httperr.Write(c, http.StatusForbidden, "forbidden", "role not allowed")
		c.Abort()
	}
}

// ActorFrom returns the authenticated caller, if any.
func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	id, ok1 := c.Get(ContextUserID)
	role, ok2 := c.Get(ContextUserRole)
	if !ok1 || !ok2 {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id.(uint), Role: role.(domain.Role)}, true
}

func setActor(c *gin.Context, a domain.Actor) {
	c.Set(ContextUserID, a.ID)
	c.Set(ContextUserRole, a.Role)
}

func parseRequest(c *gin.Context, secret string) (domain.Actor, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return domain.Actor{}, errNoToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Actor{}, errors.New("invalid_authorization_header")
	}

	return ParseToken(parts[1], secret)
}

// ParseToken verifies an HS256 token and extracts the actor.
func ParseToken(tokenString, secret string) (domain.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid_token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Actor{}, errors.New("invalid_token_claims")
	}

	var id uint64
	switch sub := claims["sub"].(type) {
	case float64:
		if sub > 0 {
			id = uint64(sub)
		}
	case string:
		id, _ = strconv.ParseUint(sub, 10, 64)
	}

	roleName, _ := claims["role"].(string)
	role, ok := domain.ParseRole(strings.ToLower(roleName))
	if !ok {
		role, ok = roleAliases[strings.ToLower(roleName)]
	}
	if id == 0 || !ok {
		return domain.Actor{}, errors.New("invalid_token_payload")
	}

	return domain.Actor{ID: uint(id), Role: role}, nil
}
