package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

type contextKey string

const accountContextKey contextKey = "session.account"

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// Account is the authenticated identity stored in the session.
type Account struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Session interface {
	Set(ctx context.Context, key string, account Account, ttl time.Duration) error
	Get(ctx context.Context, key string) (Account, error)
	Delete(ctx context.Context, key string) error
}

func ContextWithAccount(ctx context.Context, account Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

func GetAccountFromCtx(ctx context.Context) (Account, error) {
	account, ok := ctx.Value(accountContextKey).(Account)
	if !ok {
		return Account{}, errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "account is not found in context")
	}

	return account, nil
}

type redisSessionStore struct {
	logger *logrus.Logger
	client *goredis.Client
}

func NewRedisSessionStore(logger *logrus.Logger, client *goredis.Client) Session {
	return &redisSessionStore{
		logger: logger,
		client: client,
	}
}

func sessionKey(key string) string {
	return fmt.Sprintf("session:%s", key)
}

// Set implements Session.
func (s *redisSessionStore) Set(ctx context.Context, key string, account Account, ttl time.Duration) error {
	buff, _ := json.Marshal(account)

	if err := s.client.Set(ctx, sessionKey(key), buff, ttl).Err(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while storing session")
	}

	return nil
}

// Get implements Session.
func (s *redisSessionStore) Get(ctx context.Context, key string) (Account, error) {
	buff, err := s.client.Get(ctx, sessionKey(key)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return Account{}, errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "session is not found")
		}
		s.logger.WithContext(ctx).WithError(err).Error()
		return Account{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting session")
	}

	var account Account
	if err := json.Unmarshal(buff, &account); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return Account{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while decoding session")
	}

	return account, nil
}

// Delete implements Session.
func (s *redisSessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, sessionKey(key)).Err(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while deleting session")
	}

	return nil
}
