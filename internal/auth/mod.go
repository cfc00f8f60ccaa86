package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/permissions"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const actorKey = "actor"

func GenerateSecureToken(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return ""
	}

	return hex.EncodeToString(b)
}

// SetActor stores the caller of the current request.
func SetActor(c *gin.Context, actor permissions.Actor) {
	c.Set(actorKey, actor)
}

// CurrentActor returns the caller of the current request, anonymous when
// nothing was stored.
func CurrentActor(c *gin.Context) permissions.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(permissions.Actor); ok {
			return actor
		}
	}
	return permissions.Actor{}
}

// ActorFor describes user for permission checks.
func ActorFor(user *models.User) permissions.Actor {
	return permissions.Actor{
		ID:            user.ID.Hex(),
		Email:         user.Email,
		Authenticated: true,
		IsSuperuser:   user.IsSuperuser,
		IsStaff:       user.IsStaff,
		IsAdmin:       user.IsAdmin,
	}
}

// TokenBlacklist remembers revoked tokens until they would have expired.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type redisBlacklist struct {
	db *redis.Client
}

func NewRedisBlacklist(db *redis.Client) TokenBlacklist {
	return &redisBlacklist{db: db}
}

func (b *redisBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.db.Set(ctx, blacklistKey(token), true, ttl).Err()
}

// Check if token is in the blacklist
func (b *redisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, err := b.db.Get(ctx, blacklistKey(token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return true, err
	}
	return true, nil
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

var ErrGoogleToken = errors.New("invalid google id token")

// GoogleVerifier checks a google id token and returns the identity it
// carries.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (models.GoogleIdentity, error)
}

type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (g *googleVerifier) Verify(_ context.Context, idToken string) (models.GoogleIdentity, error) {
	if g.clientID == "" {
		return models.GoogleIdentity{}, errors.Wrap(ErrGoogleToken, "google login is not configured")
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return models.GoogleIdentity{}, errors.Wrap(ErrGoogleToken, err.Error())
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return models.GoogleIdentity{}, errors.Wrap(ErrGoogleToken, "cannot decode token")
	}

	return models.GoogleIdentity{
		Email:         claimSet.Email,
		Name:          claimSet.Name,
		FamilyName:    claimSet.FamilyName,
		Picture:       claimSet.Picture,
		EmailVerified: claimSet.EmailVerified,
	}, nil
}
