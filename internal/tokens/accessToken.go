package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func NewAccessToken(subject, jti string, now, exp time.Time, secret []byte) (string, error) {
	return sign(AccessClaims{Type: TypeAccess, RegisteredClaims: registered(subject, jti, now, exp)}, secret)
}

func AccessClaimsFromToken(tokenStr string, accessSecret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(accessSecret))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != TypeAccess {
		return nil, ErrWrongType
	}
	return &claims, nil
}
