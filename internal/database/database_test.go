package database

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docfill/internal/config"
	"docfill/internal/logger"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: "5432", User: "docfill", Name: "docfill"}

	tests := []struct {
		name    string
		mutate  func(*config.DatabaseConfig)
		want    string
		wantErr bool
	}{
		{
			name: "password and sslmode",
			mutate: func(c *config.DatabaseConfig) {
				c.Password = "s3cret"
				c.SSLMode = "disable"
			},
			want: "postgres://docfill:s3cret@db:5432/docfill?application_name=docfill&connect_timeout=5&sslmode=disable",
		},
		{
			name: "no password",
			want: "postgres://docfill@db:5432/docfill?application_name=docfill&connect_timeout=5",
		},
		{name: "missing host", mutate: func(c *config.DatabaseConfig) { c.Host = "" }, wantErr: true},
		{name: "missing port", mutate: func(c *config.DatabaseConfig) { c.Port = "" }, wantErr: true},
		{name: "missing user", mutate: func(c *config.DatabaseConfig) { c.User = "" }, wantErr: true},
		{name: "missing name", mutate: func(c *config.DatabaseConfig) { c.Name = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			if tt.mutate != nil {
				tt.mutate(&c)
			}
			got, err := BuildPostgresDSN(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { sqlOpen = orig })
}

func fastBackoff(t *testing.T) {
	t.Helper()
	orig := pingBackoff
	pingBackoff = time.Millisecond
	t.Cleanup(func() { pingBackoff = orig })
}

func TestNewPostgres(t *testing.T) {
	ctx := context.Background()
	conf := config.DatabaseConfig{
		Host:               "db",
		Port:               "5432",
		User:               "docfill",
		Password:           "pass",
		Name:               "docfill",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)

		mock.ExpectPing()

		got, err := NewPostgres(ctx, conf, nil)
		require.NoError(t, err)
		assert.Same(t, db, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retries until the server answers", func(t *testing.T) {
		fastBackoff(t)
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, config.LogConfig{Level: "info", JSON: true}, time.UTC)

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing()

		_, err = NewPostgres(ctx, conf, log)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("db_ping_retry")))
		assert.Contains(t, buf.String(), `"db_host":"db"`)
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		fastBackoff(t)
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		for i := 0; i < pingAttempts; i++ {
			mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		}

		got, err := NewPostgres(ctx, conf, nil)
		assert.EqualError(t, err, "db ping: ping failed")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		cctx, cancel := context.WithCancel(ctx)

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		cancel()

		_, err = NewPostgres(cctx, conf, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("sqlOpen error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))

		got, err := NewPostgres(ctx, conf, nil)
		assert.EqualError(t, err, "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("invalid config", func(t *testing.T) {
		got, err := NewPostgres(ctx, config.DatabaseConfig{}, nil)
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}
