package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/hrutik5321/homelib/internal/db"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

var errNotConnected = errors.New("database not connected")

var _ db.DB = (*PostgresDB)(nil)

type PostgresDB struct {
	pool   *pgxpool.Pool
	sqlDB  *sql.DB
	schema string
}

func New() *PostgresDB {
	return &PostgresDB{}
}

// NewWithDB wraps an already opened handle. Close releases it.
func NewWithDB(sqlDB *sql.DB, schema string) *PostgresDB {
	return &PostgresDB{sqlDB: sqlDB, schema: schema}
}

func (p *PostgresDB) buildDSN(cfg db.ConnConfig) string {
	sslmode := "disable"
	if cfg.SSL {
		sslmode = "require"
	}

	params := url.Values{}
	params.Set("sslmode", sslmode)
	if cfg.Schema != "" {
		params.Set("search_path", cfg.Schema)
	}
	if cfg.MaxConns > 0 {
		params.Set("pool_max_conns", strconv.Itoa(int(cfg.MaxConns)))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: params.Encode(),
	}
	return u.String()
}

// Connect implements db.DB.
func (p *PostgresDB) Connect(ctx context.Context, cfg db.ConnConfig) error {
	poolCfg, err := pgxpool.ParseConfig(p.buildDSN(cfg))
	if err != nil {
		return db.ConnectionError("parse config", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return db.ConnectionError("open pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return db.ConnectionError("ping", err)
	}

	p.pool = pool
	p.sqlDB = stdlib.OpenDBFromPool(pool)
	p.schema = cfg.Schema
	return nil
}

// Close db
func (p *PostgresDB) Close() error {
	var err error
	if p.sqlDB != nil {
		err = p.sqlDB.Close()
		p.sqlDB = nil
	}
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	return err
}

// Ping checks that a connection can still be acquired and used.
func (p *PostgresDB) Ping(ctx context.Context) error {
	conn, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return db.ConnectionError("ping", err)
	}
	return nil
}

// acquire hands out a connection scoped to one operation.
// Callers must Close it on every path.
func (p *PostgresDB) acquire(ctx context.Context) (*sql.Conn, error) {
	if p.sqlDB == nil {
		return nil, db.ConnectionError("acquire", errNotConnected)
	}
	conn, err := p.sqlDB.Conn(ctx)
	if err != nil {
		return nil, db.ConnectionError("acquire", err)
	}
	return conn, nil
}

// classify maps driver errors onto the db error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 {
			switch pgErr.Code[:2] {
			case "08", "28", "3D":
				return db.ConnectionError(op, err)
			}
		}
		return db.StatementError(op, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return db.ConnectionError(op, err)
	}

	return db.StatementError(op, err)
}
