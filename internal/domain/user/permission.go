package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"

	// Requests
	PermissionRequestCreate  Permission = "request.create"
	PermissionRequestViewAll Permission = "request.view_all"
	PermissionRequestApprove Permission = "request.approve"

	// Attendance
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	// Leave ledger
	PermissionLeaveBalanceViewAll Permission = "leave_balance.view_all"
	PermissionLeaveBalanceGrant   Permission = "leave_balance.grant"

	// Daily reports
	PermissionDailyReportCreate  Permission = "daily_report.create"
	PermissionDailyReportViewAll Permission = "daily_report.view_all"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// Administration
	PermissionUserManage         Permission = "user.manage"
	PermissionNotificationManage Permission = "notification.manage"
	PermissionAdminStats         Permission = "admin.stats"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionViewOwnProfile,
		PermissionRequestCreate,
		PermissionRequestViewAll,
		PermissionRequestApprove,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionLeaveBalanceViewAll,
		PermissionLeaveBalanceGrant,
		PermissionDailyReportCreate,
		PermissionDailyReportViewAll,
		PermissionReportsView,
		PermissionUserManage,
		PermissionNotificationManage,
		PermissionAdminStats,
	},
	RoleApprover: {
		PermissionViewOwnProfile,
		PermissionRequestCreate,
		PermissionRequestViewAll,
		PermissionRequestApprove,
		PermissionAttendanceViewOwn,
		PermissionLeaveBalanceViewAll,
		PermissionDailyReportCreate,
		PermissionReportsView,
	},
	RoleUser: {
		PermissionViewOwnProfile,
		PermissionRequestCreate,
		PermissionAttendanceViewOwn,
		PermissionDailyReportCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
