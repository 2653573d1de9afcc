package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"foodgram/internal/pkg/apperr"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errInvalidToken = apperr.Unauthorized("Invalid token")

const (
	ctxUserID = "user_id"
	ctxToken  = "auth_token"
)

// TokenChecker confirms that an issued token has not been revoked.
type TokenChecker interface {
	Active(ctx context.Context, userID int64, hash string) (bool, error)
}

type Authenticator struct {
	jwt    *jwtsvc.Service
	tokens TokenChecker
}

func NewAuthenticator(jwt *jwtsvc.Service, tokens TokenChecker) *Authenticator {
	return &Authenticator{jwt: jwt, tokens: tokens}
}

// RequireAuth rejects requests without a valid, unrevoked token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.FromError(c, apperr.Unauthorized("Authentication credentials were not provided"))
			return
		}
		if err := a.authenticate(c, raw); err != nil {
			response.FromError(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is sent but lets anonymous
// requests through. A bad token is still rejected.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}
		if err := a.authenticate(c, raw); err != nil {
			response.FromError(c, err)
			return
		}
		c.Next()
	}
}

// authenticate returns errInvalidToken for bad or revoked tokens and an
// internal error when the token store cannot be read.
func (a *Authenticator) authenticate(c *gin.Context, raw string) error {
	claims, err := a.jwt.ValidateToken(raw)
	if err != nil {
		return errInvalidToken
	}
	active, err := a.tokens.Active(c.Request.Context(), claims.UserID, jwtsvc.HashToken(raw))
	if err != nil {
		return apperr.Internal("failed to check token", err)
	}
	if !active {
		return errInvalidToken
	}
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxToken, raw)
	return nil
}

// bearerToken accepts "Token <t>" and "Bearer <t>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

// Token returns the raw token of the current request.
func Token(c *gin.Context) string {
	return c.GetString(ctxToken)
}

// AuthorLookup returns the author of a resource or gorm.ErrRecordNotFound.
type AuthorLookup interface {
	AuthorOf(ctx context.Context, id int64) (int64, error)
}

// OwnershipChecker lets only the author modify a resource addressed by the
// ":id" path parameter.
type OwnershipChecker struct {
	resources AuthorLookup
	noun      string
}

func NewOwnershipChecker(resources AuthorLookup, noun string) *OwnershipChecker {
	return &OwnershipChecker{resources: resources, noun: noun}
}

func (oc *OwnershipChecker) RequireAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == 0 {
			response.FromError(c, apperr.Unauthorized("Authentication required"))
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			response.FromError(c, apperr.NotFound(oc.noun+" not found"))
			return
		}

		authorID, err := oc.resources.AuthorOf(c.Request.Context(), id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.FromError(c, apperr.NotFound(oc.noun+" not found"))
			return
		}
		if err != nil {
			response.FromError(c, apperr.Internal("lookup author", err))
			return
		}

		if authorID != userID {
			response.FromError(c, apperr.Forbidden("You can only change your own "+strings.ToLower(oc.noun)+"s"))
			return
		}

		c.Next()
	}
}
