package auth

import (
	"time"

	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

var (
	ErrInvalidToken   = errors.New("token is invalid or expired")
	ErrWrongTokenType = errors.New("token has wrong type")
)

type JWTClaim struct {
	Id        string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// GetUserObjectId returns the id of the user the token was issued to.
func (j JWTClaim) GetUserObjectId() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(j.Id)
}

// TTL is the time left until the token expires.
func (j JWTClaim) TTL() time.Duration {
	if j.ExpiresAt == nil {
		return 0
	}
	return time.Until(j.ExpiresAt.Time)
}

// JWTManager signs and validates access and refresh tokens. The two kinds use
// separate secrets and carry a token_type claim.
type JWTManager struct {
	secret        []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewJWTManager(cfg util.JWTConfig) *JWTManager {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTManager{
		secret:        []byte(cfg.Secret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

func (m *JWTManager) GenerateAccess(user *models.User) (string, error) {
	return m.sign(user, AccessToken, m.accessTTL, m.secret)
}

func (m *JWTManager) GenerateRefresh(user *models.User) (string, error) {
	return m.sign(user, RefreshToken, m.refreshTTL, m.refreshSecret)
}

// Pair issues a fresh refresh and access token for user.
func (m *JWTManager) Pair(user *models.User) (models.TokenPair, error) {
	refresh, err := m.GenerateRefresh(user)
	if err != nil {
		return models.TokenPair{}, err
	}
	access, err := m.GenerateAccess(user)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Refresh: refresh, Access: access}, nil
}

// AccessFromRefresh issues an access token for the owner of a refresh claim.
func (m *JWTManager) AccessFromRefresh(claim JWTClaim) (string, error) {
	userID, err := claim.GetUserObjectId()
	if err != nil {
		return "", ErrInvalidToken
	}
	return m.GenerateAccess(&models.User{ID: userID, Email: claim.Email})
}

func (m *JWTManager) ValidateAccess(signed string) (JWTClaim, error) {
	return m.validate(signed, AccessToken, m.secret)
}

func (m *JWTManager) ValidateRefresh(signed string) (JWTClaim, error) {
	return m.validate(signed, RefreshToken, m.refreshSecret)
}

// Validate accepts either kind of token.
func (m *JWTManager) Validate(signed string) (JWTClaim, error) {
	claim, err := m.ValidateAccess(signed)
	if err == nil {
		return claim, nil
	}
	return m.ValidateRefresh(signed)
}

func (m *JWTManager) sign(user *models.User, tokenType string, ttl time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := JWTClaim{
		Id:        user.ID.Hex(),
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

func (m *JWTManager) validate(signed, tokenType string, key []byte) (JWTClaim, error) {
	token, err := jwt.ParseWithClaims(
		signed,
		&JWTClaim{},
		func(token *jwt.Token) (interface{}, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return JWTClaim{}, errors.Wrap(ErrInvalidToken, err.Error())
	}

	claim, ok := token.Claims.(*JWTClaim)
	if !ok || !token.Valid {
		return JWTClaim{}, ErrInvalidToken
	}
	if claim.TokenType != tokenType {
		return JWTClaim{}, ErrWrongTokenType
	}
	return *claim, nil
}
