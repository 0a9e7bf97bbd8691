package patient

import (
	"path/filepath"
	"regexp"
	"strings"
)

// MaxDocumentBytes caps the uploaded document photo at 5 MB.
const MaxDocumentBytes = 5 * 1024 * 1024

var (
	fullNameRe   = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	gmailRe      = regexp.MustCompile(`@gmail\.com$`)
	phoneRe      = regexp.MustCompile(`^\+\d{1,3}\d{4,14}$`)
	phoneSplitRe = regexp.MustCompile(`^(\+\d{1,3})(\d+)$`)
)

// Validate checks every field and the document, collecting all
// violations rather than stopping at the first. A nil return means the
// request is valid. Field values are trimmed in place.
func Validate(req *RegistrationRequest) ValidationErrors {
	var errs ValidationErrors

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	// An empty field reports only the required message. A present field
	// is checked against every rule, so one field can produce several
	// messages, e.g. "3" fails both the letters-only and length rules.
	if req.FullName == "" {
		errs = append(errs, "Full name is required")
	} else {
		if !fullNameRe.MatchString(req.FullName) {
			errs = append(errs, "Full name must contain only letters and spaces")
		}
		if len(req.FullName) < 2 {
			errs = append(errs, "Full name must be at least 2 characters long")
		}
		if len(req.FullName) > 100 {
			errs = append(errs, "Full name must not exceed 100 characters")
		}
	}

	if req.Email == "" {
		errs = append(errs, "Email is required")
	} else {
		if !emailRe.MatchString(req.Email) {
			errs = append(errs, "Please provide a valid email address")
		}
		if !gmailRe.MatchString(req.Email) {
			errs = append(errs, "Email must be a Gmail address (@gmail.com)")
		}
	}

	if req.Phone == "" {
		errs = append(errs, "Phone number is required")
	} else if !phoneRe.MatchString(req.Phone) {
		errs = append(errs, "Phone must include country code and be 5-15 digits (e.g., +1234567890)")
	}

	errs = append(errs, validateDocument(req.Document)...)

	return errs
}

func validateDocument(doc *Document) ValidationErrors {
	if doc == nil || doc.Content == nil {
		return ValidationErrors{"Document photo is required"}
	}

	var errs ValidationErrors
	if !isJPEG(doc) {
		errs = append(errs, "Only JPG files are allowed for document photos")
	}
	if doc.Size > MaxDocumentBytes {
		errs = append(errs, "File too large. Maximum size is 5MB.")
	}
	return errs
}

func isJPEG(doc *Document) bool {
	if doc.ContentType == "image/jpeg" || doc.ContentType == "image/jpg" {
		return true
	}
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	return ext == ".jpg" || ext == ".jpeg"
}

// SplitPhone decomposes a validated phone number into country code and
// national number. A phone that fails the pattern is returned unchanged
// as the national number with a "+1" country code, matching the stored
// shape for legacy rows.
func SplitPhone(phone string) (countryCode, number string) {
	m := phoneSplitRe.FindStringSubmatch(phone)
	if m == nil {
		return "+1", phone
	}
	return m[1], m[2]
}
