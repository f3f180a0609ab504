package contact_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/goliatone/go-site/internal/contact"
)

type mailServer struct {
	mu       sync.Mutex
	requests []contact.MailRequest
	status   int
	body     string
	delay    time.Duration
}

func (m *mailServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-r.Context().Done():
			return
		}
	}
	var req contact.MailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		m.mu.Lock()
		m.requests = append(m.requests, req)
		m.mu.Unlock()
	}
	status := m.status
	if status == 0 {
		status = http.StatusAccepted
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, m.body)
}

func (m *mailServer) sent() []contact.MailRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]contact.MailRequest(nil), m.requests...)
}

type ContactHandlerSuite struct {
	suite.Suite
	mail     *mailServer
	upstream *httptest.Server
	mux      *http.ServeMux
	now      time.Time
}

func (s *ContactHandlerSuite) SetupTest() {
	s.mail = &mailServer{}
	s.upstream = httptest.NewServer(s.mail)
	s.now = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	s.mux = s.newMux(contact.Config{
		To:       "inbox@example.com",
		From:     "noreply@example.com",
		SiteName: "Acme",
		Endpoint: s.upstream.URL,
		Timeout:  time.Second,
	})
}

func (s *ContactHandlerSuite) TearDownTest() {
	s.upstream.Close()
}

func (s *ContactHandlerSuite) newMux(cfg contact.Config) *http.ServeMux {
	h, err := contact.NewHandler(cfg, contact.WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func (s *ContactHandlerSuite) do(method, target, contentType string, body io.Reader, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func (s *ContactHandlerSuite) postJSON(data map[string]any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	body, err := json.Marshal(data)
	s.Require().NoError(err)
	return s.do(http.MethodPost, "/api/contact", "application/json", bytes.NewReader(body), headers)
}

func validSubmission() map[string]any {
	return map[string]any{
		"firstName": "  Ada ",
		"lastName":  "Lovelace",
		"email":     " ADA@Example.COM ",
		"company":   "",
		"phone":     "555-0100",
		"extension": "12",
		"message":   "Hello <team>\nSecond line",
	}
}

func (s *ContactHandlerSuite) TestHealth() {
	rec, payload := s.do(http.MethodGet, "/api/health", "", nil, nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(true, payload["ok"])
	s.Equal("contact-worker", payload["service"])
	s.Equal("2024-05-01T09:30:00.000Z", payload["ts"])
	s.Equal("no-store", rec.Header().Get("Cache-Control"))
}

func (s *ContactHandlerSuite) TestPreflight() {
	rec, _ := s.do(http.MethodOptions, "/api/contact", "", nil, map[string]string{"Origin": "https://acme.test"})

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("https://acme.test", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	s.Equal("content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	s.Equal("origin", rec.Header().Get("Vary"))
}

func (s *ContactHandlerSuite) TestMethodNotAllowed() {
	rec, payload := s.do(http.MethodGet, "/api/contact", "", nil, nil)

	s.Equal(http.StatusMethodNotAllowed, rec.Code)
	s.Equal(false, payload["ok"])
	s.Equal("Method Not Allowed", payload["error"])
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func (s *ContactHandlerSuite) TestInvalidBody() {
	rec, payload := s.do(http.MethodPost, "/api/contact", "text/plain", strings.NewReader("not json"), nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid JSON body", payload["error"])
	s.Empty(s.mail.sent())
}

func (s *ContactHandlerSuite) TestTrailingDataAfterJSONRejected() {
	encoded, err := json.Marshal(validSubmission())
	s.Require().NoError(err)

	for _, trailer := range []string{" garbage", `{"firstName":"Eve"}`, "]"} {
		rec, payload := s.do(http.MethodPost, "/api/contact", "application/json", strings.NewReader(string(encoded)+trailer), nil)

		s.Equal(http.StatusBadRequest, rec.Code, trailer)
		s.Equal("Invalid JSON body", payload["error"], trailer)
	}
	s.Empty(s.mail.sent())

	rec, _ := s.do(http.MethodPost, "/api/contact", "application/json", strings.NewReader(string(encoded)+"\n  \n"), nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ContactHandlerSuite) TestLongMessageSentUnwrapped() {
	data := validSubmission()
	long := strings.TrimSpace(strings.Repeat("lorem ipsum ", 20))
	data["message"] = long

	rec, _ := s.postJSON(data, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	sent := s.mail.sent()
	s.Require().Len(sent, 1)
	s.Contains(sent[0].Content[0].Value, "Message:\n"+long+"\n")
}

func (s *ContactHandlerSuite) TestMissingFieldsReportedInOrder() {
	data := validSubmission()
	data["firstName"] = "   "
	data["message"] = ""

	rec, payload := s.postJSON(data, nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(false, payload["ok"])
	s.Equal("Missing firstName", payload["error"])
}

func (s *ContactHandlerSuite) TestInvalidEmail() {
	data := validSubmission()
	data["email"] = "ada@example"

	rec, payload := s.postJSON(data, nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid email", payload["error"])
}

func (s *ContactHandlerSuite) TestHoneypotSkipsSend() {
	data := validSubmission()
	data["website"] = "http://spam.test"

	rec, payload := s.postJSON(data, nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(true, payload["ok"])
	s.Empty(s.mail.sent())
}

func (s *ContactHandlerSuite) TestSendsMailChannelsRequest() {
	rec, payload := s.postJSON(validSubmission(), map[string]string{
		"Cf-Connecting-Ip": "203.0.113.9",
		"User-Agent":       "test-agent",
	})

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(true, payload["ok"])

	sent := s.mail.sent()
	s.Require().Len(sent, 1)
	req := sent[0]
	s.Equal("inbox@example.com", req.Personalizations[0].To[0].Email)
	s.Equal(contact.Address{Email: "noreply@example.com", Name: "Acme"}, req.From)
	s.Equal(contact.Address{Email: "ada@example.com", Name: "Ada Lovelace"}, req.ReplyTo)
	s.Equal("Website contact: Ada Lovelace", req.Subject)
	s.Require().Len(req.Content, 2)

	text := req.Content[0]
	s.Equal("text/plain", text.Type)
	s.Contains(text.Value, "Name: Ada Lovelace\n")
	s.Contains(text.Value, "Company: -\n")
	s.Contains(text.Value, "Phone: 555-0100 ext 12\n")
	s.Contains(text.Value, "Message:\nHello <team>\nSecond line\n")
	s.Contains(text.Value, "IP: 203.0.113.9\n")
	s.Contains(text.Value, "Referer: -\n")
	s.Contains(text.Value, "Time: 2024-05-01T09:30:00.000Z\n")

	html := req.Content[1]
	s.Equal("text/html", html.Type)
	s.Contains(html.Value, "Hello &lt;team&gt;<br />Second line")
	s.Contains(html.Value, "<strong>Company:</strong> -")
	s.NotContains(html.Value, "<team>")
}

func (s *ContactHandlerSuite) TestFormEncodedBody() {
	form := url.Values{}
	for key, value := range validSubmission() {
		form.Set(key, value.(string))
	}

	rec, payload := s.do(http.MethodPost, "/api/contact", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(true, payload["ok"])
	s.Len(s.mail.sent(), 1)
}

func (s *ContactHandlerSuite) TestUpstreamRejection() {
	s.mail.status = http.StatusUnauthorized
	s.mail.body = "bad key"

	rec, payload := s.postJSON(validSubmission(), nil)

	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("Email send failed", payload["error"])
	s.Equal("bad key", payload["detail"])
}

func (s *ContactHandlerSuite) TestUpstreamUnavailable() {
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	s.mux = s.newMux(contact.Config{
		To:       "inbox@example.com",
		From:     "noreply@example.com",
		Endpoint: closed.URL,
	})

	rec, payload := s.postJSON(validSubmission(), nil)

	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("Upstream email service error", payload["error"])
}

func (s *ContactHandlerSuite) TestUpstreamTimeout() {
	s.mail.delay = 2 * time.Second
	s.mux = s.newMux(contact.Config{
		To:       "inbox@example.com",
		From:     "noreply@example.com",
		Endpoint: s.upstream.URL,
		Timeout:  50 * time.Millisecond,
	})

	rec, payload := s.postJSON(validSubmission(), nil)

	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("Upstream email service error", payload["error"])
}

func (s *ContactHandlerSuite) TestAllowedOriginOverridesRequestOrigin() {
	s.mux = s.newMux(contact.Config{
		To:            "inbox@example.com",
		From:          "noreply@example.com",
		Endpoint:      s.upstream.URL,
		AllowedOrigin: "https://acme.test",
	})

	rec, _ := s.do(http.MethodOptions, "/api/contact", "", nil, map[string]string{"Origin": "https://other.test"})

	s.Equal("https://acme.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestContactHandlerSuite(t *testing.T) {
	suite.Run(t, new(ContactHandlerSuite))
}

func TestNewHandlerRequiresAddresses(t *testing.T) {
	if _, err := contact.NewHandler(contact.Config{From: "noreply@example.com"}); err == nil {
		t.Fatalf("expected error when recipient is missing")
	}
	if _, err := contact.NewHandler(contact.Config{To: "inbox@example.com", From: "not-an-email"}); err == nil {
		t.Fatalf("expected error for malformed sender")
	}
}
