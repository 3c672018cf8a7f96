package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/niwaya/kintai-backend/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

const (
	SubjectApprovalRequest     = "【承認依頼】新しい申請が届いています"
	SubjectDailyReportReminder = "【リマインド】日報の入力をお忘れではありませんか？"
	SubjectApprovalReminder    = "【リマインド】承認待ちの申請があります"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendApprovalRequest(to string, data ApprovalRequestData) error
	SendRequestResult(to string, data RequestResultData) error
	SendDailyReportReminder(to string, data DailyReportReminderData) error
	SendApprovalReminder(to string, data ApprovalReminderData) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendMailFunc
	backoff   func(attempt int) time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		// exponential backoff: 1s, 2s, 4s
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}, nil
}

type ApprovalRequestData struct {
	ApproverName  string
	ApplicantName string
	RequestType   string
	Title         string
	AppliedAt     string
	DetailURL     string
}

// SendApprovalRequest tells an approver a request is waiting for them
func (s *emailServiceImpl) SendApprovalRequest(to string, data ApprovalRequestData) error {
	return s.render(to, SubjectApprovalRequest, "approval_request.html", data)
}

type RequestResultData struct {
	ApplicantName string
	RequestType   string
	Title         string
	Status        string
	StatusLabel   string
	ApproverName  string
	Comment       string
	DetailURL     string
}

// SendRequestResult tells the applicant their request was approved, rejected or returned
func (s *emailServiceImpl) SendRequestResult(to string, data RequestResultData) error {
	subject := fmt.Sprintf("【%s】%s", data.StatusLabel, data.Title)
	return s.render(to, subject, "request_result.html", data)
}

type DailyReportReminderData struct {
	UserName  string
	Date      string
	ReportURL string
}

func (s *emailServiceImpl) SendDailyReportReminder(to string, data DailyReportReminderData) error {
	return s.render(to, SubjectDailyReportReminder, "daily_report_reminder.html", data)
}

type PendingItem struct {
	ApplicantName string
	RequestType   string
	Title         string
	AppliedAt     string
	DaysPending   int
}

type ApprovalReminderData struct {
	ApproverName string
	Items        []PendingItem
	ApprovalsURL string
}

func (s *emailServiceImpl) SendApprovalReminder(to string, data ApprovalReminderData) error {
	return s.render(to, SubjectApprovalReminder, "approval_reminder.html", data)
}

func (s *emailServiceImpl) render(to, subject, name string, data any) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return s.sendHTML(to, subject, body.String())
}

func (s *emailServiceImpl) buildMessage(to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("UTF-8", s.cfg.FromName), s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if !s.cfg.Enabled || s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	message := s.buildMessage(to, subject, htmlBody)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, s.cfg.From, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt < maxRetries {
			time.Sleep(s.backoff(attempt))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
