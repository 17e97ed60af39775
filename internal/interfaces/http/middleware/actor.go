package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/infrastructure/auth"
	"github.com/carbonlink/backend/internal/infrastructure/logger"
	"github.com/carbonlink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys and headers used for actor resolution
const (
	PrincipalKey    = "principal"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	UserIDHeader    = "X-User-ID"
	CompanyIDHeader = "X-Company-ID"
	// PermissionsHeader carries a comma separated permission list for header identities
	PermissionsHeader = "X-Permissions"
)

// Principal is the authenticated caller
type Principal struct {
	Actor       connection.Actor
	Permissions []string
	// Claims is nil when the identity came from development headers
	Claims *auth.Claims
}

// HasPermission reports whether the principal holds permission
func (p *Principal) HasPermission(permission string) bool {
	return slices.Contains(p.Permissions, permission)
}

// ActorConfig holds configuration for the actor middleware
type ActorConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Revocations is optional; lookups fail open when the store errors
	Revocations auth.RevocationList
	// AllowHeaderIdentity accepts X-User-ID / X-Company-ID when no bearer token is sent
	AllowHeaderIdentity bool
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// Actor resolves the acting user and company for every request
func Actor(cfg ActorConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		var (
			principal *Principal
			err       error
		)
		switch {
		case authHeader != "":
			principal, err = principalFromToken(c, cfg, authHeader)
		case cfg.AllowHeaderIdentity:
			principal, err = principalFromHeaders(c)
		default:
			err = auth.ErrInvalidToken
		}
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err)
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

func principalFromToken(c *gin.Context, cfg ActorConfig, authHeader string) (*Principal, error) {
	tokenString, ok := strings.CutPrefix(authHeader, BearerPrefix)
	if !ok || tokenString == "" {
		return nil, auth.ErrInvalidToken
	}

	claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	if cfg.Revocations != nil {
		ctx := c.Request.Context()
		if claims.ID != "" {
			revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
			if err != nil {
				cfg.Logger.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if revoked {
				return nil, auth.ErrTokenRevoked
			}
		}
		revoked, err := cfg.Revocations.IsCompanyRevoked(ctx, claims.CompanyID, claims.GetIssuedAtTime())
		if err != nil {
			cfg.Logger.Error("Failed to check company revocation",
				zap.String("company_id", claims.CompanyID),
				zap.Error(err))
		} else if revoked {
			return nil, auth.ErrTokenRevoked
		}
	}

	// ValidateAccessToken has already checked both ids parse
	userID, _ := claims.GetUserUUID()
	companyID, _ := claims.GetCompanyUUID()
	return &Principal{
		Actor:       connection.Actor{UserID: userID, CompanyID: companyID},
		Permissions: claims.Permissions,
		Claims:      claims,
	}, nil
}

func principalFromHeaders(c *gin.Context) (*Principal, error) {
	userID, err := uuid.Parse(c.GetHeader(UserIDHeader))
	if err != nil {
		return nil, auth.ErrMissingUserID
	}
	companyID, err := uuid.Parse(c.GetHeader(CompanyIDHeader))
	if err != nil {
		return nil, auth.ErrMissingCompanyID
	}

	var permissions []string
	for p := range strings.SplitSeq(c.GetHeader(PermissionsHeader), ",") {
		if p = strings.TrimSpace(p); p != "" {
			permissions = append(permissions, p)
		}
	}
	return &Principal{
		Actor:       connection.Actor{UserID: userID, CompanyID: companyID},
		Permissions: permissions,
	}, nil
}

func setPrincipal(c *gin.Context, p *Principal) {
	c.Set(PrincipalKey, p)
	c.Set(logger.GinUserIDKey, p.Actor.UserID.String())
	c.Set(logger.GinCompanyIDKey, p.Actor.CompanyID.String())

	ctx := c.Request.Context()
	reqLogger := logger.FromContext(ctx).With(
		zap.String("user_id", p.Actor.UserID.String()),
		zap.String("company_id", p.Actor.CompanyID.String()),
	)
	c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLogger))
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("Authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	case errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrMissingCompanyID):
		message = err.Error()
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(logger.GinRequestIDKey)))
}

// GetPrincipal retrieves the authenticated caller from gin.Context
func GetPrincipal(c *gin.Context) *Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*Principal); ok {
			return p
		}
	}
	return nil
}

// GetActor returns the acting user and company
func GetActor(c *gin.Context) (connection.Actor, bool) {
	p := GetPrincipal(c)
	if p == nil {
		return connection.Actor{}, false
	}
	return p.Actor, true
}

// RequirePermission rejects callers that lack permission
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(logger.GinRequestIDKey)))
			return
		}
		if !p.HasPermission(permission) {
			logger.GetGinLogger(c).Info("Permission denied",
				zap.String("required", permission),
				zap.Strings("granted", p.Permissions),
			)
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Missing permission "+permission, c.GetString(logger.GinRequestIDKey)))
			return
		}
		c.Next()
	}
}
