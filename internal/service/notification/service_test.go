package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/notification"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/cron"
	"github.com/niwaya/kintai-backend/internal/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu      sync.Mutex
	sent    map[string][]string // template -> recipients
	failTo  string
	results []email.RequestResultData
	digests map[string]email.ApprovalReminderData
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: map[string][]string{}, digests: map[string]email.ApprovalReminderData{}}
}

func (m *fakeMailer) record(kind, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if to == m.failTo {
		return errors.New("smtp: 550 mailbox unavailable")
	}
	m.sent[kind] = append(m.sent[kind], to)
	sort.Strings(m.sent[kind])
	return nil
}

func (m *fakeMailer) SendApprovalRequest(to string, _ email.ApprovalRequestData) error {
	return m.record("approval_request", to)
}

func (m *fakeMailer) SendRequestResult(to string, data email.RequestResultData) error {
	m.mu.Lock()
	m.results = append(m.results, data)
	m.mu.Unlock()
	return m.record("request_result", to)
}

func (m *fakeMailer) SendDailyReportReminder(to string, _ email.DailyReportReminderData) error {
	return m.record("daily_report_reminder", to)
}

func (m *fakeMailer) SendApprovalReminder(to string, data email.ApprovalReminderData) error {
	m.mu.Lock()
	m.digests[to] = data
	m.mu.Unlock()
	return m.record("approval_reminder", to)
}

type fakeUsers struct {
	user.UserRepository
	users []user.User
}

func (f *fakeUsers) ListActiveByRoles(_ context.Context, roles []user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if !u.IsActive {
			continue
		}
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

type fakeSettings struct {
	settings *notification.Settings
}

func (f *fakeSettings) Get(context.Context) (notification.Settings, error) {
	if f.settings == nil {
		return notification.Settings{}, notification.ErrSettingsNotFound
	}
	return *f.settings, nil
}

func (f *fakeSettings) Update(_ context.Context, s notification.Settings) (notification.Settings, error) {
	s.UpdatedAt = time.Now()
	f.settings = &s
	return s, nil
}

type fakeRequests struct {
	request.RequestRepository
	pending []request.Request
}

func (f *fakeRequests) List(context.Context, request.ListFilter) ([]request.Request, int64, error) {
	return f.pending, int64(len(f.pending)), nil
}

type fakeReports map[string]bool

func (f fakeReports) UserIDsReportedOn(context.Context, time.Time) (map[string]bool, error) {
	return f, nil
}

type fakeScheduler struct {
	specs map[string]string
}

func (f *fakeScheduler) Reschedule(name, spec string) error {
	f.specs[name] = spec
	return nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	emails map[string]int
	sweeps map[string]int
}

func (r *fakeRecorder) Email(event string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails[event+outcome(err)]++
}

func (r *fakeRecorder) ReminderSweep(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps[kind+outcome(err)]++
}

func outcome(err error) string {
	if err != nil {
		return "/error"
	}
	return "/success"
}

var staff = []user.User{
	{ID: "admin-1", Email: "admin@example.com", Name: "管理 太郎", Role: user.RoleAdmin, IsActive: true},
	{ID: "approver-1", Email: "boss@example.com", Name: "承認 花子", Role: user.RoleApprover, IsActive: true},
	{ID: "user-1", Email: "sato@example.com", Name: "佐藤 一郎", Role: user.RoleUser, IsActive: true},
	{ID: "user-2", Email: "suzuki@example.com", Name: "鈴木 次郎", Role: user.RoleUser, IsActive: true},
	{ID: "user-3", Email: "gone@example.com", Name: "退職 三郎", Role: user.RoleUser, IsActive: false},
}

type fixture struct {
	svc       *service
	mailer    *fakeMailer
	settings  *fakeSettings
	requests  *fakeRequests
	reports   fakeReports
	scheduler *fakeScheduler
	recorder  *fakeRecorder
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		mailer:    newFakeMailer(),
		settings:  &fakeSettings{},
		requests:  &fakeRequests{},
		reports:   fakeReports{},
		scheduler: &fakeScheduler{specs: map[string]string{}},
		recorder:  &fakeRecorder{emails: map[string]int{}, sweeps: map[string]int{}},
	}
	svc := NewNotificationService(f.settings, &fakeUsers{users: staff}, f.requests, f.reports, f.mailer, f.scheduler, f.recorder,
		Config{BaseURL: "https://kintai.example.com/"}).(*service)
	svc.now = func() time.Time { return now }
	f.svc = svc
	t.Cleanup(svc.Stop)
	return f
}

// 2025-07-22 is a Tuesday.
var tuesdayEvening = time.Date(2025, 7, 22, 18, 0, 0, 0, time.FixedZone("JST", 9*3600))

func TestApprovalRequested_NotifiesOtherApprovers(t *testing.T) {
	f := newFixture(t, tuesdayEvening)

	f.svc.ApprovalRequested(context.Background(), request.Request{
		ID: "r1", Type: request.TypeLeave, ApplicantID: "approver-1", Title: "有給休暇申請",
	})
	f.svc.Stop()

	assert.Equal(t, []string{"admin@example.com"}, f.mailer.sent["approval_request"])
	assert.Equal(t, 1, f.recorder.emails["approval_requested/success"])
}

func TestRequestDecided_LooksUpApplicant(t *testing.T) {
	f := newFixture(t, tuesdayEvening)
	approverName := "承認 花子"
	comment := "日付を確認してください"

	f.svc.RequestDecided(context.Background(), request.Request{
		ID: "r1", Type: request.TypeOvertime, ApplicantID: "user-1", Title: "時間外労働申請",
		Status: request.StatusReturned, ApproverName: &approverName, ApproverComment: &comment,
	})
	f.svc.Stop()

	assert.Equal(t, []string{"sato@example.com"}, f.mailer.sent["request_result"])
	require.Len(t, f.mailer.results, 1)
	assert.Equal(t, "差戻し", f.mailer.results[0].StatusLabel)
	assert.Equal(t, comment, f.mailer.results[0].Comment)
	assert.Equal(t, "https://kintai.example.com/requests/r1", f.mailer.results[0].DetailURL)
}

func TestEnqueue_AfterStopDrops(t *testing.T) {
	f := newFixture(t, tuesdayEvening)
	f.svc.Stop()

	f.svc.RequestDecided(context.Background(), request.Request{ID: "r1", ApplicantID: "user-1"})
	assert.Empty(t, f.mailer.sent["request_result"])
}

func TestDailyReportReminders(t *testing.T) {
	f := newFixture(t, tuesdayEvening)
	f.reports["user-2"] = true

	result, err := f.svc.SendDailyReportReminders(context.Background(), false)
	require.NoError(t, err)

	// defaults target users and admins, and skip anyone who already reported
	assert.Equal(t, 2, result.Targets)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, []string{"admin@example.com", "sato@example.com"}, f.mailer.sent["daily_report_reminder"])
	assert.Equal(t, 1, f.recorder.sweeps["daily_report/success"])
}

func TestDailyReportReminders_SkipsWeekendUnlessForced(t *testing.T) {
	saturday := time.Date(2025, 7, 26, 18, 0, 0, 0, time.FixedZone("JST", 9*3600))
	f := newFixture(t, saturday)

	result, err := f.svc.SendDailyReportReminders(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, f.mailer.sent["daily_report_reminder"])

	result, err = f.svc.SendDailyReportReminders(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 3, result.Sent)
}

func TestDailyReportReminders_CountsFailures(t *testing.T) {
	f := newFixture(t, tuesdayEvening)
	f.mailer.failTo = "sato@example.com"

	result, err := f.svc.SendDailyReportReminders(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Targets)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
}

func TestDailyReportReminders_Disabled(t *testing.T) {
	f := newFixture(t, tuesdayEvening)
	disabled := notification.DefaultSettings()
	disabled.DailyReportReminderEnabled = false
	f.settings.settings = &disabled

	result, err := f.svc.SendDailyReportReminders(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}

func TestApprovalReminders_DigestPerApprover(t *testing.T) {
	f := newFixture(t, tuesdayEvening)
	old := tuesdayEvening.Add(-4 * 24 * time.Hour)
	recent := tuesdayEvening.Add(-time.Hour)
	f.requests.pending = []request.Request{
		{ID: "r1", Type: request.TypeLeave, ApplicantID: "user-1", ApplicantName: "佐藤 一郎", Title: "有給休暇申請", AppliedAt: &old},
		{ID: "r2", Type: request.TypeExpense, ApplicantID: "approver-1", ApplicantName: "承認 花子", Title: "仮払申請", AppliedAt: &old},
		{ID: "r3", Type: request.TypeOvertime, ApplicantID: "user-2", Title: "時間外労働申請", AppliedAt: &recent},
	}

	result, err := f.svc.SendApprovalReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)

	assert.Len(t, f.mailer.digests["admin@example.com"].Items, 2)
	boss := f.mailer.digests["boss@example.com"]
	require.Len(t, boss.Items, 1, "approvers are not reminded of their own requests")
	assert.Equal(t, "佐藤 一郎", boss.Items[0].ApplicantName)
	assert.Equal(t, 4, boss.Items[0].DaysPending)
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture(t, tuesdayEvening)
	ctx := context.Background()
	sendTime := "17:30"

	_, err := f.svc.UpdateSettings(ctx, user.Actor{ID: "user-1", Role: user.RoleUser}, notification.UpdateSettingsRequest{SendTime: &sendTime})
	assert.ErrorIs(t, err, notification.ErrAdminOnly)

	bad := "25:00"
	_, err = f.svc.UpdateSettings(ctx, user.Actor{ID: "admin-1", Role: user.RoleAdmin}, notification.UpdateSettingsRequest{SendTime: &bad})
	assert.Error(t, err)

	resp, err := f.svc.UpdateSettings(ctx, user.Actor{ID: "admin-1", Role: user.RoleAdmin}, notification.UpdateSettingsRequest{SendTime: &sendTime})
	require.NoError(t, err)
	assert.Equal(t, "17:30", resp.SendTime)
	assert.True(t, resp.DailyReportReminderEnabled, "unset fields keep their defaults")
	assert.Equal(t, "30 17 * * *", f.scheduler.specs[cron.JobDailyReportReminder])

	got, err := f.svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "17:30", got.SendTime)
}
