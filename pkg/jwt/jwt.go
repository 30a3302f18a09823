package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Rangga11268/siakad-smp-sub000/config"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

const (
	checkinTokenType = "checkin"
	issuer           = "siakad"
)

// CheckinClaims QR check-in token payload
type CheckinClaims struct {
	StudentID string `json:"student_id"`
	TokenType string `json:"token_type"`
	jwtv5.RegisteredClaims
}

// Manager signs and verifies short-lived check-in tokens
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager from the attendance settings
func NewManager(cfg *config.AttendanceConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.CheckinSecret),
		ttl:    cfg.CheckinTTL,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and expiry checks
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

// GenerateCheckinToken signs a token for studentID and returns it with its expiry
func (m *Manager) GenerateCheckinToken(studentID string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := CheckinClaims{
		StudentID: studentID,
		TokenType: checkinTokenType,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   studentID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(expires),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseCheckinToken verifies signature, expiry and token type
func (m *Manager) ParseCheckinToken(tokenString string) (*CheckinClaims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &CheckinClaims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithTimeFunc(m.now), jwtv5.WithIssuer(issuer), jwtv5.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*CheckinClaims)
	if !ok || !token.Valid || claims.TokenType != checkinTokenType || claims.StudentID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
