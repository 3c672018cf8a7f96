package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
	"github.com/niwaya/kintai-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

var (
	setupOnce sync.Once
	sharedDB  *database.DB
	setupErr  error
)

// testDatabase connects to TEST_DATABASE_URL, applies migrations once per
// process and truncates every table. Tests skip without the variable.
func testDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	setupOnce.Do(func() {
		migrator, err := database.NewMigrator(dsn)
		if err != nil {
			setupErr = err
			return
		}
		defer migrator.Close()
		if err := migrator.Up(); err != nil {
			setupErr = err
			return
		}
		sharedDB, setupErr = database.NewPostgreSQLDB(context.Background(), dsn, database.PoolOptions{MaxConns: 10})
	})
	require.NoError(t, setupErr)

	require.NoError(t, truncateAllTables(context.Background(), sharedDB))
	return sharedDB
}

func truncateAllTables(ctx context.Context, db *database.DB) error {
	tables := []string{
		"request_attachments",
		"expense_lines",
		"settlement_requests",
		"reimbursement_requests",
		"expense_requests",
		"holiday_work_requests",
		"overtime_requests",
		"leave_requests",
		"requests",
		"leave_balances",
		"construction_daily_reports",
		"users",
	}
	for _, table := range tables {
		if _, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

func createTestUser(t *testing.T, db *database.DB, email string, role user.Role) user.User {
	t.Helper()
	u, err := postgresql.NewUserRepository(db).Create(context.Background(), user.User{
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuuNq1Yo8WZs4nJx2bA0oXkqS9Zx6V0m2.",
		Name:         email,
		Role:         role,
		IsActive:     true,
	})
	require.NoError(t, err)
	return u
}
