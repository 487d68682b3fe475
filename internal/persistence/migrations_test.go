package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestRunMigrationsAppliesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_second.sql", "CREATE TABLE b (id INT);")
	writeMigration(t, dir, "001_first.sql", "CREATE TABLE a (id INT);")
	writeMigration(t, dir, "README.md", "not sql")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT);")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT);")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, RunMigrations(context.Background(), db, dir, zap.NewNop()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsStopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "001_first.sql", "BROKEN;")
	writeMigration(t, dir, "002_second.sql", "CREATE TABLE b (id INT);")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("BROKEN;").WillReturnError(errors.New("syntax error"))

	err = RunMigrations(context.Background(), db, dir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_first.sql")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsWithoutDatabase(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "does-not-matter", zap.NewNop()))
}

func TestRedisPingWithoutClient(t *testing.T) {
	var r *Redis
	assert.Error(t, r.Ping(context.Background()))
	var p *Postgres
	assert.Error(t, p.Ping(context.Background()))
}
