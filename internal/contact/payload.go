package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

const maxBodyBytes = 64 << 10

var errTrailingData = errors.New("unexpected data after JSON object")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission is a normalised contact form payload.
type Submission struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
	Extension string `json:"extension"`
	Message   string `json:"message"`
	Website   string `json:"website"`
}

// FullName joins first and last name.
func (s Submission) FullName() string {
	return s.FirstName + " " + s.LastName
}

// IsSpam reports whether the hidden honeypot field was filled.
func (s Submission) IsSpam() bool {
	return s.Website != ""
}

// Validate checks required fields in form order and stops at the first
// failure so clients get a single message.
func (s Submission) Validate() error {
	checks := []struct {
		name  string
		value string
	}{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"email", s.Email},
		{"message", s.Message},
	}
	for _, check := range checks {
		if err := validation.Validate(check.value, validation.Required.Error("Missing "+check.name)); err != nil {
			return invalidSubmission(check.name, err)
		}
	}
	if err := validation.Validate(s.Email, validation.Match(emailPattern).Error("Invalid email")); err != nil {
		return invalidSubmission("email", err)
	}
	return nil
}

func invalidSubmission(field string, err error) error {
	return goerrors.New(err.Error(), goerrors.CategoryValidation).
		WithTextCode("CONTACT_INVALID_FIELD").
		WithCode(http.StatusBadRequest).
		WithMetadata(map[string]any{"field": field})
}

// decodeSubmission reads JSON or urlencoded form bodies. Any other content
// type is still attempted as JSON.
func decodeSubmission(r *http.Request) (Submission, error) {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var raw map[string]any
	switch mediaType {
	case "application/x-www-form-urlencoded":
		r.Body = body
		if err := r.ParseForm(); err != nil {
			return Submission{}, invalidBody(err)
		}
		raw = make(map[string]any, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) > 0 {
				raw[key] = values[len(values)-1]
			}
		}
	default:
		decoder := json.NewDecoder(body)
		decoder.UseNumber()
		if err := decoder.Decode(&raw); err != nil {
			return Submission{}, invalidBody(err)
		}
		if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			if err == nil {
				err = errTrailingData
			}
			return Submission{}, invalidBody(err)
		}
	}

	return normalize(raw), nil
}

func invalidBody(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid JSON body").
		WithTextCode("CONTACT_INVALID_BODY").
		WithCode(http.StatusBadRequest)
}

func normalize(raw map[string]any) Submission {
	get := func(key string) string {
		value, ok := raw[key]
		if !ok || value == nil {
			return ""
		}
		if text, ok := value.(string); ok {
			return strings.TrimSpace(text)
		}
		return strings.TrimSpace(fmt.Sprint(value))
	}
	return Submission{
		FirstName: get("firstName"),
		LastName:  get("lastName"),
		Email:     strings.ToLower(get("email")),
		Company:   get("company"),
		Phone:     get("phone"),
		Extension: get("extension"),
		Message:   get("message"),
		Website:   get("website"),
	}
}
