// Package jwt signs and verifies HMAC JWTs for a caller-defined claims type
// T, usually a struct embedding jwt.RegisteredClaims:
//
//	svc, err := jwt.NewService(cfg, func() *SessionClaims { return &SessionClaims{} })
//	token, err := svc.Generate(&SessionClaims{RegisteredClaims: svc.Registered(sid)})
//	claims, err := svc.Parse(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Service signs and parses tokens carrying claims of type T.
type Service[T gojwt.Claims] struct {
	cfg    Config
	empty  func() T
	now    func() time.Time
	parser *gojwt.Parser
}

// NewService validates cfg. empty must return a fresh, non-nil T to decode into.
func NewService[T gojwt.Claims](cfg Config, empty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service[T]{cfg: cfg, empty: empty, now: time.Now}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{cfg.method().Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(func() time.Time { return s.now() }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(cfg.Issuer))
	}
	s.parser = gojwt.NewParser(opts...)
	return s, nil
}

// TTL is the configured token lifetime.
func (s *Service[T]) TTL() time.Duration { return s.cfg.TTL }

// Registered fills the standard claims for subject, valid for one TTL.
func (s *Service[T]) Registered(subject string) gojwt.RegisteredClaims {
	now := s.now()
	return gojwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TTL)),
	}
}

// Generate signs claims.
func (s *Service[T]) Generate(claims T) (string, error) {
	signed, err := gojwt.NewWithClaims(s.cfg.method(), claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Parse checks signature, algorithm, expiry and issuer before returning the claims.
func (s *Service[T]) Parse(raw string) (T, error) {
	var zero T
	token, err := s.parser.ParseWithClaims(raw, s.empty(), func(*gojwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return zero, fmt.Errorf("jwt: parse: %w", err)
	}
	claims, ok := token.Claims.(T)
	if !ok || !token.Valid {
		return zero, errors.New("jwt: invalid token")
	}
	return claims, nil
}
