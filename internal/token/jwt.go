package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/voc-auth/internal/model"
)

// Claims represents JWT claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"unique_name"`
}

// Params configures the token manager. Every field is mandatory.
type Params struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

var _ model.TokenManager = (*JWT)(nil)

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	issuer    string
	audience  string
	expiry    time.Duration
	now       func() time.Time
}

// NewJWT creates a new JWT token manager.
func NewJWT(p Params) (*JWT, error) {
	switch {
	case p.Secret == "":
		return nil, errors.New("jwt secret is empty")
	case p.Issuer == "":
		return nil, errors.New("jwt issuer is empty")
	case p.Audience == "":
		return nil, errors.New("jwt audience is empty")
	case p.Expiry <= 0:
		return nil, fmt.Errorf("jwt expiry must be positive, got %s", p.Expiry)
	}

	return &JWT{
		secretKey: []byte(p.Secret),
		issuer:    p.Issuer,
		audience:  p.Audience,
		expiry:    p.Expiry,
		now:       time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and validating.
func (j *JWT) WithClock(now func() time.Time) *JWT {
	j.now = now
	return j
}

// Issue creates a signed access token for user.
func (j *JWT) Issue(user model.User) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.expiry)

	name := user.Name
	if name == "" {
		name = user.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
		Name:  name,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate checks signature, issuer, audience and expiry with zero clock skew.
func (j *JWT) Validate(tokenString string) (model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
			}
			return j.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return model.Identity{}, &model.Error{Kind: model.ErrAuth, Message: "invalid token", Cause: err}
	}
	if !token.Valid {
		return model.Identity{}, model.NewAuthError("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Identity{}, &model.Error{Kind: model.ErrAuth, Message: "invalid token subject", Cause: err}
	}

	return model.Identity{
		UserID:    userID,
		Email:     claims.Email,
		Name:      claims.Name,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
