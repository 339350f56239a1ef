package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestManager() (*NotificationManager, *MockEmailSender, *MockPushSender) {
	email := &MockEmailSender{}
	push := &MockPushSender{}
	mgr := NewNotificationManager(email, push, NewTemplateEngine())
	return mgr, email, push
}

func TestTemplateEngine_RenderBuiltIn(t *testing.T) {
	e := NewTemplateEngine()

	subject, body, err := e.Render("uexam-due", map[string]string{
		"exam_type":      "U6",
		"child_name":     "Emma",
		"recipient_name": "Alex",
		"due_date":       "2026-03-10",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if subject != "U6 for Emma is due" {
		t.Errorf("unexpected subject: %q", subject)
	}
	if !strings.Contains(body, "due on 2026-03-10") {
		t.Errorf("expected due date in body, got %q", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestTemplateEngine_MissingDataLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	subject, _, err := e.Render("checkup-due", map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(subject, "{{checkup_name}}") {
		t.Errorf("expected unreplaced placeholder, got %q", subject)
	}
}

func TestTemplateEngine_RegisterCustom(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{
		ID:      "custom",
		Subject: "Hi {{name}}",
		Body:    "Body",
		Type:    TypeEmail,
	})

	subject, _, err := e.Render("custom", map[string]string{"name": "Sam"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "Hi Sam" {
		t.Errorf("unexpected subject: %q", subject)
	}
}

func TestManager_SendEmail(t *testing.T) {
	mgr, email, _ := newTestManager()

	n := &Notification{
		Type:      TypeEmail,
		Recipient: "family@example.com",
		Subject:   "Checkup due",
		Body:      "Your dental checkup is due.",
	}
	if err := mgr.Send(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n.Status != "sent" {
		t.Errorf("expected status sent, got %s", n.Status)
	}
	if n.SentAt == nil {
		t.Error("expected SentAt to be set")
	}
	if len(email.Calls()) != 1 {
		t.Fatalf("expected 1 email call, got %d", len(email.Calls()))
	}
}

func TestManager_SendPush(t *testing.T) {
	mgr, _, push := newTestManager()

	n := &Notification{
		Type:      TypePush,
		Recipient: "account-1",
		Subject:   "2 overdue reminders",
		Body:      "U6 for Emma is overdue.",
	}
	if err := mgr.Send(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := push.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 push call, got %d", len(calls))
	}
	if calls[0].Title != "2 overdue reminders" {
		t.Errorf("unexpected push title: %q", calls[0].Title)
	}
}

func TestManager_SendFailure(t *testing.T) {
	mgr, email, _ := newTestManager()
	email.ShouldFail = true
	email.FailError = "smtp unavailable"

	n := &Notification{
		Type:      TypeEmail,
		Recipient: "family@example.com",
		Body:      "test",
	}
	if err := mgr.Send(context.Background(), n); err == nil {
		t.Fatal("expected send error")
	}

	if n.Status != "failed" {
		t.Errorf("expected status failed, got %s", n.Status)
	}
	if n.Error != "smtp unavailable" {
		t.Errorf("expected error message recorded, got %q", n.Error)
	}
}

func TestManager_UnsupportedType(t *testing.T) {
	mgr, _, _ := newTestManager()
	n := &Notification{Type: "fax", Recipient: "x"}
	if err := mgr.Send(context.Background(), n); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestManager_SendFromTemplate(t *testing.T) {
	mgr, email, _ := newTestManager()

	n, err := mgr.SendFromTemplate(context.Background(), "vaccination-due", map[string]string{
		"vaccine_name":   "Tetanus",
		"recipient_name": "Alex",
		"subject_name":   "Alex",
		"due_date":       "2026-06-01",
	}, "family@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n.Subject != "Tetanus booster is due" {
		t.Errorf("unexpected subject: %q", n.Subject)
	}
	if n.TemplateID != "vaccination-due" {
		t.Errorf("unexpected template id: %s", n.TemplateID)
	}
	if len(email.Calls()) != 1 {
		t.Fatalf("expected 1 email call, got %d", len(email.Calls()))
	}
}

func TestManager_Retry(t *testing.T) {
	mgr, email, _ := newTestManager()
	email.ShouldFail = true
	email.FailError = "temporary failure"

	n := &Notification{
		Type:      TypeEmail,
		Recipient: "family@example.com",
		Body:      "retry me",
	}
	_ = mgr.Send(context.Background(), n)

	// Sender recovers
	email.ShouldFail = false
	if err := mgr.Retry(context.Background(), n.ID); err != nil {
		t.Fatalf("unexpected retry error: %v", err)
	}

	got, err := mgr.GetNotification(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != "sent" {
		t.Errorf("expected status sent after retry, got %s", got.Status)
	}
	if got.Error != "" {
		t.Errorf("expected error cleared after retry, got %q", got.Error)
	}
}

func TestManager_RetryNotFailed(t *testing.T) {
	mgr, _, _ := newTestManager()

	n := &Notification{
		Type:      TypeEmail,
		Recipient: "family@example.com",
		Body:      "ok",
	}
	_ = mgr.Send(context.Background(), n)

	if err := mgr.Retry(context.Background(), n.ID); err == nil {
		t.Fatal("expected error retrying a sent notification")
	}
}

func TestManager_Stats(t *testing.T) {
	mgr, email, _ := newTestManager()

	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "a", Body: "1"})
	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "b", Body: "2"})

	email.ShouldFail = true
	email.FailError = "down"
	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "c", Body: "3"})

	stats := mgr.NotificationStats(context.Background())
	if stats["sent"] != 2 {
		t.Errorf("expected 2 sent, got %d", stats["sent"])
	}
	if stats["failed"] != 1 {
		t.Errorf("expected 1 failed, got %d", stats["failed"])
	}
}

func TestHandler_SendAndGet(t *testing.T) {
	mgr, _, _ := newTestManager()
	h := NewNotificationHandler(mgr)
	e := echo.New()

	body := `{"type":"email","recipient":"family@example.com","subject":"Due","body":"Checkup due"}`
	req := httptest.NewRequest(http.MethodPost, "/notifications/send", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.HandleSend(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var created Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected notification ID")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetPath("/notifications/:id")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	if err := h.HandleGet(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetNotFound(t *testing.T) {
	mgr, _, _ := newTestManager()
	h := NewNotificationHandler(mgr)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.HandleGet(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_ListRequiresRecipient(t *testing.T) {
	mgr, _, _ := newTestManager()
	h := NewNotificationHandler(mgr)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.HandleList(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
