package admin

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	signed, exp, err := IssueToken("s3cret", "ops", []string{"results:delete"}, time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := ParseToken("s3cret", signed)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Username)
	assert.Equal(t, []string{"results:delete"}, claims.Roles)
}

func TestParseTokenRejects(t *testing.T) {
	signed, _, err := IssueToken("s3cret", "ops", nil, time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("other", signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := IssueToken("s3cret", "ops", nil, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("s3cret", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestValidateAdminCredentials(t *testing.T) {
	db, mock := newMockDB(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	cols := []string{"username", "display_name", "token_hash", "roles", "created_at", "updated_at"}

	mock.ExpectQuery("FROM admin_accounts WHERE username").
		WithArgs("ops").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("ops", "Ops", string(hash), "{admin}", time.Now(), time.Now()))
	acc, err := ValidateAdminCredentials(db, "ops", "letmein")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, []string(acc.Roles))

	mock.ExpectQuery("FROM admin_accounts WHERE username").
		WithArgs("ops").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("ops", "Ops", string(hash), "{admin}", time.Now(), time.Now()))
	_, err = ValidateAdminCredentials(db, "ops", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	mock.ExpectQuery("FROM admin_accounts WHERE username").
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)
	_, err = ValidateAdminCredentials(db, "nobody", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogAdminAction(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO admin_audit").
		WithArgs("ops", "127.0.0.1", "/api/v1/admin/cache/purge", "cache_purge", sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := LogAdminAction(db, "ops", "127.0.0.1", "/api/v1/admin/cache/purge", "cache_purge", map[string]interface{}{"removed": 2}, true)
	assert.NoError(t, err)
	assert.NoError(t, LogAdminAction(nil, "ops", "", "", "", nil, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}
