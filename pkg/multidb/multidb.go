package multidb

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx"
)

type MultiDB interface {
	GetSqlx(driver Driver, key string) (*sqlx.DB, error)
	Ping(ctx context.Context) error
	io.Closer
}
