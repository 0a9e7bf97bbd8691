package patient

import (
	"strings"
	"testing"
)

func validRequest() *RegistrationRequest {
	return &RegistrationRequest{
		FullName: "John Doe",
		Email:    "john.doe@gmail.com",
		Phone:    "+12345678901",
		Document: &Document{
			Content:     strings.NewReader("jpeg bytes"),
			ContentType: "image/jpeg",
			Size:        1024,
			Filename:    "passport.jpg",
		},
	}
}

func TestValidate_AcceptsValidRequest(t *testing.T) {
	if errs := Validate(validRequest()); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidate_FullName(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		wantErr  string
	}{
		{"empty", "", "Full name is required"},
		{"whitespace only", "   ", "Full name is required"},
		{"digits", "John Doe 3rd", "Full name must contain only letters and spaces"},
		{"punctuation", "Anne-Marie O'Neil", "Full name must contain only letters and spaces"},
		{"too short", "J", "Full name must be at least 2 characters long"},
		{"too long", strings.Repeat("a", 101), "Full name must not exceed 100 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.FullName = tt.fullName
			errs := Validate(req)
			if !containsError(errs, tt.wantErr) {
				t.Errorf("expected %q in %v", tt.wantErr, errs)
			}
		})
	}
}

func TestValidate_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr string
	}{
		{"empty", "", "Email is required"},
		{"not an address", "not-an-email", "Please provide a valid email address"},
		{"missing domain", "john@", "Please provide a valid email address"},
		{"not gmail", "john@example.com", "Email must be a Gmail address (@gmail.com)"},
		{"gmail-like prefix", "john@gmail.com.evil.com", "Email must be a Gmail address (@gmail.com)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.Email = tt.email
			errs := Validate(req)
			if !containsError(errs, tt.wantErr) {
				t.Errorf("expected %q in %v", tt.wantErr, errs)
			}
		})
	}
}

func TestValidate_Phone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr string
	}{
		{"empty", "", "Phone number is required"},
		{"no plus", "12345678901", "Phone must include country code and be 5-15 digits (e.g., +1234567890)"},
		{"too short", "+1234", "Phone must include country code and be 5-15 digits (e.g., +1234567890)"},
		{"too long", "+123456789012345678", "Phone must include country code and be 5-15 digits (e.g., +1234567890)"},
		{"letters", "+1abc5678901", "Phone must include country code and be 5-15 digits (e.g., +1234567890)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.Phone = tt.phone
			errs := Validate(req)
			if !containsError(errs, tt.wantErr) {
				t.Errorf("expected %q in %v", tt.wantErr, errs)
			}
		})
	}
}

func TestValidate_Document(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		req := validRequest()
		req.Document = nil
		errs := Validate(req)
		if !containsError(errs, "Document photo is required") {
			t.Errorf("expected document-required error, got %v", errs)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		req := validRequest()
		req.Document.ContentType = "image/png"
		req.Document.Filename = "photo.png"
		errs := Validate(req)
		if !containsError(errs, "Only JPG files are allowed for document photos") {
			t.Errorf("expected jpg-only error, got %v", errs)
		}
	})

	t.Run("jpeg by extension", func(t *testing.T) {
		req := validRequest()
		req.Document.ContentType = "application/octet-stream"
		req.Document.Filename = "photo.JPEG"
		if errs := Validate(req); len(errs) != 0 {
			t.Errorf("expected no errors for .jpeg extension, got %v", errs)
		}
	})

	t.Run("too large", func(t *testing.T) {
		req := validRequest()
		req.Document.Size = MaxDocumentBytes + 1
		errs := Validate(req)
		if !containsError(errs, "File too large. Maximum size is 5MB.") {
			t.Errorf("expected size error, got %v", errs)
		}
	})
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	req := &RegistrationRequest{
		FullName: "J3",
		Email:    "not-an-email",
		Phone:    "12345",
		Document: nil,
	}

	// not-an-email fails both the format and gmail rules, so five
	// messages come back for the four bad fields.
	errs := Validate(req)
	if len(errs) != 5 {
		t.Errorf("expected 5 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidate_ReportsEveryRuleForAField(t *testing.T) {
	t.Run("full name", func(t *testing.T) {
		req := validRequest()
		req.FullName = "3"

		errs := Validate(req)
		for _, want := range []string{
			"Full name must contain only letters and spaces",
			"Full name must be at least 2 characters long",
		} {
			if !containsError(errs, want) {
				t.Errorf("expected %q in %v", want, errs)
			}
		}
	})

	t.Run("email", func(t *testing.T) {
		req := validRequest()
		req.Email = "not-an-email"

		errs := Validate(req)
		for _, want := range []string{
			"Please provide a valid email address",
			"Email must be a Gmail address (@gmail.com)",
		} {
			if !containsError(errs, want) {
				t.Errorf("expected %q in %v", want, errs)
			}
		}
	})

	t.Run("empty field reports required only", func(t *testing.T) {
		req := validRequest()
		req.FullName = ""

		errs := Validate(req)
		if len(errs) != 1 || errs[0] != "Full name is required" {
			t.Errorf("expected only the required message, got %v", errs)
		}
	})
}

func TestSplitPhone(t *testing.T) {
	// The country-code group is greedy: it takes three digits whenever
	// enough remain for the national number.
	tests := []struct {
		phone   string
		wantCC  string
		wantNum string
	}{
		{"+12345678901", "+123", "45678901"},
		{"+4412345678", "+441", "2345678"},
		{"+123456789", "+123", "456789"},
	}

	for _, tt := range tests {
		cc, num := SplitPhone(tt.phone)
		if cc != tt.wantCC || num != tt.wantNum {
			t.Errorf("SplitPhone(%q) = (%q, %q), want (%q, %q)", tt.phone, cc, num, tt.wantCC, tt.wantNum)
		}
	}
}

func TestSplitPhone_Unparseable(t *testing.T) {
	cc, num := SplitPhone("12345")
	if cc != "+1" || num != "12345" {
		t.Errorf("SplitPhone fallback = (%q, %q), want (+1, 12345)", cc, num)
	}
}

func containsError(errs ValidationErrors, want string) bool {
	for _, e := range errs {
		if e == want {
			return true
		}
	}
	return false
}
