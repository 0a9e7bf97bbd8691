// Package patient implements patient registration: validation, document
// intake, persistence and the HTTP surface.
package patient

import (
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrDuplicateEmail is returned when a registration reuses an email
	// address. The database unique constraint is the authority; the
	// repository maps the constraint violation to this sentinel.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrPatientNotFound is returned by lookups that match no patient.
	ErrPatientNotFound = errors.New("patient not found")
)

// Patient is a registered patient. The phone number is stored split into
// country code and national number; Phone reassembles the submitted form.
type Patient struct {
	ID            int64
	FullName      string
	Email         string
	CountryCode   string
	PhoneNumber   string
	DocumentPhoto string
	CreatedAt     time.Time
}

// Phone returns the full phone number as submitted (+<cc><national>).
func (p *Patient) Phone() string {
	return p.CountryCode + p.PhoneNumber
}

// Document is the uploaded document photo as received by the handler.
type Document struct {
	Content     io.Reader
	ContentType string
	Size        int64
	Filename    string
}

// RegistrationRequest carries the submitted form plus the uploaded
// document.
type RegistrationRequest struct {
	FullName string
	Email    string
	Phone    string
	Document *Document
}

// ValidationErrors collects every validation failure for a submission so
// the client sees all problems at once.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(v, "; ")
}
