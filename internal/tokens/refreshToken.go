package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func NewRefreshToken(subject, jti string, now, exp time.Time, secret []byte) (string, error) {
	return sign(RefreshClaims{Type: TypeRefresh, RegisteredClaims: registered(subject, jti, now, exp)}, secret)
}

func RefreshClaimsFromToken(tokenStr string, refreshSecret []byte) (*RefreshClaims, error) {
	return parseRefresh(tokenStr, refreshSecret)
}

// RefreshClaimsIgnoringExpiry checks the signature and type but accepts expired tokens.
// Revocation uses it so an expired token can still be put on the denylist.
func RefreshClaimsIgnoringExpiry(tokenStr string, refreshSecret []byte) (*RefreshClaims, error) {
	return parseRefresh(tokenStr, refreshSecret, jwt.WithoutClaimsValidation())
}

func parseRefresh(tokenStr string, refreshSecret []byte, opts ...jwt.ParserOption) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(refreshSecret), opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != TypeRefresh {
		return nil, ErrWrongType
	}
	return &claims, nil
}
