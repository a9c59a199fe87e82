package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Issuer issues the JWT
const Issuer = "recall-server"

// Audience is the intended JWT audience
const Audience = "recall-seat"

// ErrMissingSecret is returned when a signer is created without a secret
var ErrMissingSecret = errors.New("jwt secret is required")

// SeatClaims binds a token to one seat of a match
// Subject is the player ID
type SeatClaims struct {
	jwtgo.RegisteredClaims
	MatchID string `json:"matchId"`
}

// Seat is a validated seat token
type Seat struct {
	MatchID  string
	PlayerID string
}

// Signer signs and validates seat tokens with HS256
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner returns a signer for the secret
// Tokens expire after ttl, a ttl of 0 never expires
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	return &Signer{secret: []byte(secret), ttl: ttl}, nil
}

// Sign will sign a seat token for the player in the match
func (s *Signer) Sign(matchID, playerID string) (string, error) {
	now := time.Now()
	claims := SeatClaims{
		RegisteredClaims: jwtgo.RegisteredClaims{
			Audience: jwtgo.ClaimStrings{Audience},
			ID:       uuid.New().String(),
			IssuedAt: jwtgo.NewNumericDate(now),
			Issuer:   Issuer,
			Subject:  playerID,
		},
		MatchID: matchID,
	}

	if s.ttl > 0 {
		claims.ExpiresAt = jwtgo.NewNumericDate(now.Add(s.ttl))
	}

	return jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate will validate a signed seat token
func (s *Signer) Validate(signedString string) (Seat, error) {
	token, err := jwtgo.ParseWithClaims(signedString, &SeatClaims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodHMAC); !ok {
			return nil, errors.New("expected HS256 signing method")
		}

		return s.secret, nil
	})

	if err != nil {
		return Seat{}, err
	}

	if token.Valid {
		if claims, ok := token.Claims.(*SeatClaims); ok {
			if !containsAudience(claims.Audience, Audience) {
				return Seat{}, errors.New("invalid audience")
			}

			if claims.Issuer != Issuer {
				return Seat{}, errors.New("invalid issuer")
			}

			if claims.Subject == "" || claims.MatchID == "" {
				return Seat{}, errors.New("token is not bound to a seat")
			}

			return Seat{MatchID: claims.MatchID, PlayerID: claims.Subject}, nil
		}

		return Seat{}, fmt.Errorf("expected SeatClaims, got %T", token.Claims)
	}

	logrus.Warn("token claims were not valid. did not expect to reach this code")
	return Seat{}, errors.New("claims were not valid")
}

func containsAudience(audiences jwtgo.ClaimStrings, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}
