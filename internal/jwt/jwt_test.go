package jwt

import (
	"errors"
	"testing"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signer(t *testing.T) *Signer {
	s, err := NewSigner(testSecret, time.Hour)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	return s
}

func signClaims(t *testing.T, claims SeatClaims) string {
	signed, err := jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	return signed
}

func TestNewSigner(t *testing.T) {
	_, err := NewSigner("", time.Hour)
	assert.Equal(t, ErrMissingSecret, err)
}

func TestSignAndValidate(t *testing.T) {
	s := signer(t)

	sign, err := s.Sign("m1", "p1")
	assert.NoError(t, err)

	seat, err := s.Validate(sign)
	assert.NoError(t, err)
	assert.Equal(t, Seat{MatchID: "m1", PlayerID: "p1"}, seat)

	other, _ := NewSigner("other-secret", time.Hour)
	_, err = other.Validate(sign)
	assert.True(t, errors.Is(err, jwtgo.ErrTokenSignatureInvalid))
}

func TestValidate_InvalidAudience(t *testing.T) {
	signed := signClaims(t, SeatClaims{
		RegisteredClaims: jwtgo.RegisteredClaims{
			Audience: jwtgo.ClaimStrings{"different-audience"},
			ID:       uuid.New().String(),
			IssuedAt: jwtgo.NewNumericDate(time.Now()),
			Issuer:   Issuer,
			Subject:  "p1",
		},
		MatchID: "m1",
	})

	seat, err := signer(t).Validate(signed)
	assert.EqualError(t, err, "invalid audience")
	assert.Equal(t, Seat{}, seat)
}

func TestValidate_InvalidIssuer(t *testing.T) {
	signed := signClaims(t, SeatClaims{
		RegisteredClaims: jwtgo.RegisteredClaims{
			Audience: jwtgo.ClaimStrings{Audience},
			ID:       uuid.New().String(),
			IssuedAt: jwtgo.NewNumericDate(time.Now()),
			Issuer:   "invalid-issuer",
			Subject:  "p1",
		},
		MatchID: "m1",
	})

	_, err := signer(t).Validate(signed)
	assert.EqualError(t, err, "invalid issuer")
}

func TestValidate_MissingSeat(t *testing.T) {
	signed := signClaims(t, SeatClaims{
		RegisteredClaims: jwtgo.RegisteredClaims{
			Audience: jwtgo.ClaimStrings{Audience},
			Issuer:   Issuer,
			Subject:  "p1",
		},
	})

	_, err := signer(t).Validate(signed)
	assert.EqualError(t, err, "token is not bound to a seat")
}

func TestValidate_Expired(t *testing.T) {
	signed := signClaims(t, SeatClaims{
		RegisteredClaims: jwtgo.RegisteredClaims{
			Audience:  jwtgo.ClaimStrings{Audience},
			ID:        uuid.New().String(),
			IssuedAt:  jwtgo.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    Issuer,
			ExpiresAt: jwtgo.NewNumericDate(time.Now().Add(-time.Hour)),
			Subject:   "p1",
		},
		MatchID: "m1",
	})

	seat, err := signer(t).Validate(signed)
	assert.True(t, errors.Is(err, jwtgo.ErrTokenExpired))
	assert.Equal(t, Seat{}, seat)
}
