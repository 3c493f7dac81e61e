package middleware

import (
	"net/http"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/snapfield/sf-order/internal/pkg/jwt"
	"github.com/snapfield/sf-order/internal/pkg/session"
	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/response"
	"github.com/snapfield/sf-order/pkg/status"
)

// CustomerSession verifies the bearer token and loads the customer's account
// into the request context.
type CustomerSession struct {
	jsonWebToken *jwt.JSONWebToken
	session      session.Session
}

func NewCustomerSessionMiddleware(jsonWebToken *jwt.JSONWebToken, sess session.Session) *CustomerSession {
	return &CustomerSession{
		jsonWebToken: jsonWebToken,
		session:      sess,
	}
}

func (m *CustomerSession) Verify(next http.HandlerFunc) http.HandlerFunc {
	return verifySession(m.jsonWebToken, m.session, session.RoleCustomer, next)
}

// AdminSession verifies the bearer token and requires the admin role.
type AdminSession struct {
	jsonWebToken *jwt.JSONWebToken
	session      session.Session
}

func NewAdminSessionMiddleware(jsonWebToken *jwt.JSONWebToken, sess session.Session) *AdminSession {
	return &AdminSession{
		jsonWebToken: jsonWebToken,
		session:      sess,
	}
}

func (m *AdminSession) Verify(next http.HandlerFunc) http.HandlerFunc {
	return verifySession(m.jsonWebToken, m.session, session.RoleAdmin, next)
}

func verifySession(jsonWebToken *jwt.JSONWebToken, sess session.Session, role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		bearer := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(bearer, "Bearer ")
		if !found || token == "" {
			response.JSON(w, http.StatusUnauthorized, response.RESTEnvelope{
				Status:  status.UNAUTHORIZED,
				Message: "authorization token is missing",
			})
			return
		}

		claims := gojwt.RegisteredClaims{}
		if err := jsonWebToken.Parse(token, &claims); err != nil {
			ae := errors.Destruct(err)
			response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
				Status:  ae.Status,
				Message: ae.Message,
			})
			return
		}

		account, err := sess.Get(ctx, claims.Subject)
		if err != nil {
			ae := errors.Destruct(err)
			response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
				Status:  ae.Status,
				Message: ae.Message,
			})
			return
		}

		if account.Role != role {
			response.JSON(w, http.StatusForbidden, response.RESTEnvelope{
				Status:  status.FORBIDDEN,
				Message: "account is not allowed to access this resource",
			})
			return
		}

		next(w, r.WithContext(session.ContextWithAccount(ctx, account)))
	}
}
