package data

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/golang-migrate/migrate"
	_ "github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgDbContext represents a PostgreSQL database context
type PgDbContext struct {
	*pgxpool.Pool
	connectionString string
}

// QueryRunner interface for both Pool and Tx
type QueryRunner interface {
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
}

// TxFn is a function that will be called with a QueryRunner that is either the
// pool or an active transaction
type TxFn func(QueryRunner) error

// LoadPostgres points databaseUrl at databaseName, applies the migrations found
// under migrationsPath and opens a pool.
func LoadPostgres(ctx context.Context, databaseUrl, databaseName, migrationsPath string) (*PgDbContext, error) {
	u, err := url.Parse(databaseUrl)
	if err != nil {
		return nil, err
	}

	if databaseName != "" {
		u.Path = "/" + databaseName
	}

	connectionString := u.String()
	if migrationsPath != "" {
		if err := migrateUp(migrationsPath, connectionString); err != nil {
			return nil, err
		}
	}

	return NewPgDbContext(ctx, connectionString)
}

func migrateUp(migrationsPath, connectionString string) error {
	m, err := migrate.New("file://"+migrationsPath, connectionString)
	if err != nil {
		return fmt.Errorf("unable to load migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	return nil
}

func NewPgDbContext(ctx context.Context, connectionString string) (*PgDbContext, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return &PgDbContext{Pool: pool, connectionString: connectionString}, nil
}

// WithTransaction executes a function within a transaction
func (db *PgDbContext) WithTransaction(ctx context.Context, fn TxFn) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p)
		}
	}()

	err = fn(tx)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// ScanRows scans multiple rows into a slice of structs, in `pg` tag field order.
func (db *PgDbContext) ScanRows(rows pgx.Rows, dest interface{}) error {
	defer rows.Close()

	sliceValue := reflect.ValueOf(dest)
	if sliceValue.Kind() != reflect.Ptr || sliceValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice")
	}

	sliceType := sliceValue.Elem().Type()
	elementType := sliceType.Elem()
	slice := reflect.MakeSlice(sliceType, 0, 0)

	for rows.Next() {
		element := reflect.New(elementType).Elem()
		fields := make([]interface{}, 0)

		for i := 0; i < elementType.NumField(); i++ {
			if elementType.Field(i).Tag.Get("pg") == "" {
				continue
			}
			fields = append(fields, element.Field(i).Addr().Interface())
		}

		if err := rows.Scan(fields...); err != nil {
			return err
		}

		slice = reflect.Append(slice, element)
	}

	sliceValue.Elem().Set(slice)
	return rows.Err()
}

func (db *PgDbContext) GenerateNewId() string {
	return uuid.New().String()
}
