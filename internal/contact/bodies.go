package contact

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-site/pkg/interfaces"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

const htmlBodyTemplate = `
  <div>
    <p><strong>Name:</strong> {{ firstName }} {{ lastName }}</p>
    <p><strong>Email:</strong> {{ email }}</p>
    <p><strong>Company:</strong> {{ company|default:"-" }}</p>
    <p><strong>Phone:</strong> {{ phone|default:"-" }}{% if extension %} ext {{ extension }}{% endif %}</p>
    <p><strong>Message:</strong><br>{{ message|escape|linebreaksbr|safe }}</p>
    <hr>
    <p style="color:#666"><small>
      IP: {{ ip }}<br>
      UA: {{ ua }}<br>
      Referer: {{ referer|default:"-" }}<br>
      Time: {{ time }}
    </small></p>
  </div>`

// requestMeta is the sender context appended to every message.
type requestMeta struct {
	IP      string
	UA      string
	Referer string
	Time    time.Time
}

func metaFromRequest(r *http.Request, now time.Time) requestMeta {
	ip := strings.TrimSpace(r.Header.Get("Cf-Connecting-Ip"))
	if ip == "" {
		ip = remoteHost(r.RemoteAddr)
	}
	return requestMeta{
		IP:      ip,
		UA:      r.Header.Get("User-Agent"),
		Referer: r.Header.Get("Referer"),
		Time:    now.UTC(),
	}
}

func remoteHost(addr string) string {
	if addr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func (m requestMeta) timestamp() string {
	return m.Time.Format(isoMillis)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// textBody renders the plain text part. The message is sent as typed.
func textBody(s Submission, meta requestMeta) string {
	phone := orDash(s.Phone)
	if s.Extension != "" {
		phone += " ext " + s.Extension
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", s.FullName())
	fmt.Fprintf(&b, "Email: %s\n", s.Email)
	fmt.Fprintf(&b, "Company: %s\n", orDash(s.Company))
	fmt.Fprintf(&b, "Phone: %s\n", phone)
	b.WriteString("\nMessage:\n")
	b.WriteString(s.Message)
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "IP: %s\n", meta.IP)
	fmt.Fprintf(&b, "UA: %s\n", meta.UA)
	fmt.Fprintf(&b, "Referer: %s\n", orDash(meta.Referer))
	fmt.Fprintf(&b, "Time: %s\n", meta.timestamp())
	return b.String()
}

// htmlBody renders the HTML part. Values are autoescaped by the renderer.
func htmlBody(renderer interfaces.TemplateRenderer, s Submission, meta requestMeta) (string, error) {
	return renderer.RenderString(htmlBodyTemplate, map[string]any{
		"firstName": s.FirstName,
		"lastName":  s.LastName,
		"email":     s.Email,
		"company":   s.Company,
		"phone":     s.Phone,
		"extension": s.Extension,
		"message":   s.Message,
		"ip":        meta.IP,
		"ua":        meta.UA,
		"referer":   meta.Referer,
		"time":      meta.timestamp(),
	})
}
