// Package ticket signs and verifies the tokens printed on admission tickets.
package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skip2/go-qrcode"
)

var ErrInvalidToken = errors.New("invalid ticket token")

const qrSize = 256

type Claims struct {
	ReservationID string `json:"rid"`
	SessionID     string `json:"sid"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer signing with HS256. A zero ttl issues tokens
// that never expire.
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (i *Issuer) Issue(reservation *domain.Reservation) (string, error) {
	now := i.now()

	claims := Claims{
		ReservationID: reservation.ID,
		SessionID:     reservation.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   i.issuer,
			Subject:  reservation.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}

	return signed, nil
}

// Parse verifies the token and returns its claims. Any failure, including a
// foreign signing method or an expired token, is reported as ErrInvalidToken.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.ReservationID == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

// QRCode renders the token as a PNG.
func QRCode(token string) ([]byte, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("render ticket qr code: %w", err)
	}

	return png, nil
}
