package jwt

import (
	"crypto/rsa"
	"net/http"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

type JSONWebToken struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewJSONWebToken(privateKeyPEM, publicKeyPEM []byte) *JSONWebToken {
	j := &JSONWebToken{}

	if privateKey, err := gojwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM); err == nil {
		j.privateKey = privateKey
	}
	if publicKey, err := gojwt.ParseRSAPublicKeyFromPEM(publicKeyPEM); err == nil {
		j.publicKey = publicKey
	}

	return j
}

func (j *JSONWebToken) Sign(claims gojwt.Claims) (string, error) {
	if j.privateKey == nil {
		return "", errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "jwt signing key is not configured")
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims)

	signed, err := token.SignedString(j.privateKey)
	if err != nil {
		return "", errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while signing token")
	}

	return signed, nil
}

func (j *JSONWebToken) Parse(tokenString string, claims gojwt.Claims) error {
	if j.publicKey == nil {
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "jwt verification key is not configured")
	}

	token, err := gojwt.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodRSA); !ok {
			return nil, errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "unexpected token signing method")
		}
		return j.publicKey, nil
	})
	if err != nil || !token.Valid {
		return errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "invalid token")
	}

	return nil
}
