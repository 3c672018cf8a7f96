package postgresql_test

import (
	"context"
	"testing"

	"github.com/niwaya/kintai-backend/internal/domain/dailyreport"
	"github.com/niwaya/kintai-backend/internal/domain/notification"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyReportRepository_UniquePerDay(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewDailyReportRepository(db)
	u := createTestUser(t, db, "site@example.com", user.RoleUser)

	report := dailyreport.Report{
		UserID:        u.ID,
		ReportDate:    date(2025, 8, 4),
		SiteName:      "North yard",
		WorkLocation:  "Block A",
		WorkContent:   "foundation",
		WorkStartTime: "08:00",
		WorkEndTime:   "17:00",
		Workers:       []dailyreport.Worker{{Category: "staff", Name: "Sato"}},
		KYActivities:  []dailyreport.KYActivity{{Hazard: "falling", Countermeasure: "harness", Checked: true}},
	}
	created, err := repo.Create(ctx, report)
	require.NoError(t, err)

	_, err = repo.Create(ctx, report)
	assert.ErrorIs(t, err, dailyreport.ErrReportExists)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Workers, got.Workers)
	assert.Equal(t, report.KYActivities, got.KYActivities)
	assert.Empty(t, got.Machinery)

	reported, err := repo.UserIDsReportedOn(ctx, date(2025, 8, 4))
	require.NoError(t, err)
	assert.True(t, reported[u.ID])
}

func TestNotificationSettingsRepository_RoundTrip(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewNotificationSettingsRepository(db)

	s := notification.DefaultSettings()
	s.SendTime = "17:30"
	s.TargetRoles = []user.Role{user.RoleUser}
	updated, err := repo.Update(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "17:30", updated.SendTime)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []user.Role{user.RoleUser}, got.TargetRoles)
}
