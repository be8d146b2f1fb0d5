package server

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication"
	"github.com/doodlesbykumbi/conjur-authn/pkg/authentication/security"
	"github.com/doodlesbykumbi/conjur-authn/pkg/config"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

// expectPipelineReads scripts the queries one authenticate request issues
// up to the whitelist decision.
func expectPipelineReads(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT \* FROM "authenticator_configs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "resource_id", "enabled"}))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM roles WHERE role_id = \$1\)`).
		WithArgs("cucumber:user:admin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
}

func TestNewServerReadsConfigThroughHandle(t *testing.T) {
	db, mock := newMockDB(t)

	// The handle swaps configurations between requests; the whitelist must
	// follow it without the server being rebuilt.
	cfg := &config.Config{Authenticators: []string{}}
	s := NewServer(db, func() *config.Config { return cfg }, "127.0.0.1", "0")

	input := authentication.AuthenticatorInput{
		AuthenticatorName: "authn-jwt",
		ServiceID:         "prod",
		Account:           "cucumber",
		Username:          "host/myapp",
		Credentials:       []byte("a.b.c"),
	}

	expectPipelineReads(mock)
	mock.ExpectExec(`INSERT INTO messages`).WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := s.Strategy.Authenticate(context.Background(), input)
	var notWhitelisted *security.NotWhitelistedError
	require.ErrorAs(t, err, &notWhitelisted)

	cfg = &config.Config{Authenticators: []string{"authn-jwt/prod"}}

	expectPipelineReads(mock)
	// ValidateWebserviceExists re-checks the account before the resource.
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM roles WHERE role_id = \$1\)`).
		WithArgs("cucumber:user:admin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM resources WHERE resource_id = \$1\)`).
		WithArgs("cucumber:webservice:conjur/authn-jwt/prod").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO messages`).WillReturnResult(sqlmock.NewResult(1, 1))

	_, err = s.Strategy.Authenticate(context.Background(), input)
	var serviceNotDefined *security.ServiceNotDefinedError
	require.ErrorAs(t, err, &serviceNotDefined)

	assert.NoError(t, mock.ExpectationsWereMet())
}
