package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var SESSION_NAME = "sessionid"

const SessionTTL = 2 * 7 * 24 * time.Hour

type UserSession struct {
	ExpiresAt time.Time          `json:"expiresAt"`
	UserId    primitive.ObjectID `json:"userId"`
	Email     string             `json:"email"`
}

func (s UserSession) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

func (s *UserSession) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, s)
}

// Checks if user session is expired.
func (s UserSession) Expired() bool {
	return s.ExpiresAt.Before(time.Now())
}

// SessionStore keeps cookie sessions keyed by a random token.
type SessionStore interface {
	Create(ctx context.Context, userID primitive.ObjectID, email string) (string, error)
	Get(ctx context.Context, key string) (UserSession, error)
	Delete(ctx context.Context, key string) error
}

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client, ttl: SessionTTL}
}

func (s *redisSessionStore) Create(ctx context.Context, userID primitive.ObjectID, email string) (string, error) {
	key := GenerateSecureToken(20)
	value := UserSession{
		UserId:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	return key, s.client.Set(ctx, sessionKey(key), value, s.ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, key string) (UserSession, error) {
	var session UserSession
	if err := s.client.Get(ctx, sessionKey(key)).Scan(&session); err != nil {
		return UserSession{}, err
	}
	if session.Expired() {
		return UserSession{}, redis.Nil
	}
	return session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, sessionKey(key)).Err()
}

func sessionKey(key string) string {
	return "session:" + key
}

// SetSessionCookie hands the session key to the browser.
func SetSessionCookie(ctx *gin.Context, key string) {
	ctx.SetCookie(SESSION_NAME, key, int(SessionTTL.Seconds()), "/", getDomainFromRequest(ctx), isHTTPS(ctx), true)
}

func ClearSessionCookie(ctx *gin.Context) {
	ctx.SetCookie(SESSION_NAME, "", -1, "/", getDomainFromRequest(ctx), isHTTPS(ctx), true)
}

func getDomainFromRequest(ctx *gin.Context) string {
	host := ctx.Request.Host

	// Remove port
	if colonIndex := strings.LastIndex(host, ":"); colonIndex != -1 {
		host = host[:colonIndex]
	}

	if host == "localhost" || host == "127.0.0.1" {
		return ""
	}
	return host
}

func isHTTPS(ctx *gin.Context) bool {
	return ctx.Request.TLS != nil ||
		ctx.GetHeader("X-Forwarded-Proto") == "https" ||
		ctx.GetHeader("X-Forwarded-Ssl") == "on"
}

// ExtractBearerToken extracts the Bearer token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is empty")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("authorization header does not start with 'Bearer '")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("token is empty")
	}

	return token, nil
}
