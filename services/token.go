package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/smart-clinic/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload of an access token.
type Claims struct {
	UserID uint        `json:"uid"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Subject is the authenticated caller bound to a request.
type Subject struct {
	UserID uint
	Email  string
	Role   models.Role
}

// TokenService issues and validates HS256 access tokens. The secret is fixed
// for the life of the process and tokens cannot be revoked before expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenService(secret []byte, ttl time.Duration, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    now,
		// Expiry is checked against s.now in Validate.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Issue signs a token for u and returns it with its expiry.
func (s *TokenService) Issue(u *models.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Validate checks signature, algorithm, structure and expiry. Every failure
// wraps ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, s.KeyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if err := checkSubject(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// KeyFunc resolves the signing key and refuses anything but HS256.
func (s *TokenService) KeyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return s.secret, nil
}

// Subject extracts the caller identity from validated claims.
func (s *TokenService) Subject(c *Claims) (Subject, error) {
	if err := checkSubject(c); err != nil {
		return Subject{}, err
	}
	return Subject{UserID: c.UserID, Email: c.Email, Role: c.Role}, nil
}

func checkSubject(c *Claims) error {
	if c == nil || c.UserID == 0 {
		return fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if _, ok := models.ParseRole(string(c.Role)); !ok {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}
	return nil
}
