package postgresql

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/snapfield/sf-order/config"
)

var (
	db   *sql.DB
	once sync.Once
)

// GetDatabase returns the shared Postgres handle, opened on first use from
// configuration.
func GetDatabase() *sql.DB {
	once.Do(func() {
		c := config.Get()

		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.Postgres.User, c.Postgres.Password, c.Postgres.Host, c.Postgres.Port, c.Postgres.Name, c.Postgres.SSLMode,
		)

		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			panic(err)
		}

		db.SetMaxOpenConns(c.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(c.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(c.Postgres.ConnMaxLifetimeMinutes) * time.Minute)
	})

	return db
}
