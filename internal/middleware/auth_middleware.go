package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/logger"
	"toutaunclicla/pkg/utils"

	jsonres "toutaunclicla/pkg/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TokenParser interface {
	ParseJWT(token string) (*utils.Claims, error)
}

// SessionValidator checks the token against the session store.
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (domain.Session, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// AuthMiddleware accepts a request only when the bearer JWT is valid, its
// session is still in Redis, and the user exists and is not blocked. It sets
// user_id (uuid.UUID), role and token on the context.
func AuthMiddleware(tokens TokenParser, sessions SessionValidator, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					string(domain.KindUnauthorized), "Missing authorization header", nil,
				))
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					string(domain.KindUnauthorized), "Invalid authorization format", nil,
				))
			}

			tokenString := tokenParts[1]

			claims, err := tokens.ParseJWT(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					string(domain.KindUnauthorized), "Invalid token", nil,
				))
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					string(domain.KindUnauthorized), "Invalid token", nil,
				))
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			session, err := sessions.ValidateToken(ctx, tokenString)
			if err != nil {
				logger.Debug("Session not found", "user_id", claims.UserID)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					string(domain.KindUnauthorized), "Token expired or invalid", nil,
				))
			}

			if session.UserID != claims.UserID {
				logger.Warn("UserID mismatch between JWT and session", "user_id", claims.UserID)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					string(domain.KindUnauthorized), "Invalid token", nil,
				))
			}

			user, err := users.FindByID(ctx, userID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					string(domain.KindUnauthorized), "User no longer exists", nil,
				))
			}

			if user.IsBlocked {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					string(domain.KindForbidden), "Account is blocked", nil,
				))
			}

			c.Set("user_id", userID)
			c.Set("role", user.Role)
			c.Set("token", tokenString)

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, ok := c.Get("role").(string)
			if !ok || !strings.EqualFold(roleStr, domain.RoleAdmin) {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					string(domain.KindForbidden), "Admin access required", nil,
				))
			}

			return next(c)
		}
	}
}
