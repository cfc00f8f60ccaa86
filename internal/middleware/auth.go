package middleware

import (
	"context"
	"net/http"

	"gamemarket-api-io/api/internal/auth"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errBlacklisted  = errors.New("token is blacklisted")
	errUserNotFound = errors.New("user not found")
	errUserInactive = errors.New("user is inactive")
)

// UserLookup loads the account behind a token or session.
type UserLookup interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Authenticate resolves the caller from a bearer token or, failing that, a
// session cookie. A request without credentials continues anonymously; a
// request with bad credentials is rejected with 401.
func Authenticate(jwt *auth.JWTManager, blacklist auth.TokenBlacklist, sessions auth.SessionStore, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if header := c.GetHeader("Authorization"); header != "" {
			user, err := userFromToken(ctx, header, jwt, blacklist, users)
			if err != nil {
				util.HandleError(c, http.StatusUnauthorized, err)
				c.Abort()
				return
			}
			auth.SetActor(c, auth.ActorFor(user))
			c.Next()
			return
		}

		if sessions != nil {
			if key, err := c.Cookie(auth.SESSION_NAME); err == nil && key != "" {
				if session, err := sessions.Get(ctx, key); err == nil {
					if user, err := activeUser(ctx, users, session.UserId); err == nil {
						auth.SetActor(c, auth.ActorFor(user))
					}
				}
			}
		}

		c.Next()
	}
}

func userFromToken(ctx context.Context, header string, jwt *auth.JWTManager, blacklist auth.TokenBlacklist, users UserLookup) (*models.User, error) {
	token, err := auth.ExtractBearerToken(header)
	if err != nil {
		return nil, err
	}

	claim, err := jwt.ValidateAccess(token)
	if err != nil {
		return nil, err
	}

	if blacklist != nil {
		revoked, err := blacklist.IsRevoked(ctx, token)
		if err != nil {
			util.LogError("check token blacklist", err)
		}
		if revoked {
			return nil, errBlacklisted
		}
	}

	userID, err := claim.GetUserObjectId()
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return activeUser(ctx, users, userID)
}

func activeUser(ctx context.Context, users UserLookup, id primitive.ObjectID) (*models.User, error) {
	user, err := users.GetUserByID(ctx, id)
	if err != nil {
		return nil, errUserNotFound
	}
	if !user.IsActive {
		return nil, errUserInactive
	}
	return user, nil
}
