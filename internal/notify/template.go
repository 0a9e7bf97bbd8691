package notify

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Template defines a reusable notification template. Subject, HTML and
// Text all support {{key}} placeholders.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

const confirmationHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Patient Registration Confirmed</h2>
  <p>Dear {{full_name}},</p>
  <p>Thank you for registering as a patient with our medical system. Your registration has been successfully completed.</p>
  <div style="background-color: #f8f9fa; padding: 20px; border-radius: 5px; margin: 20px 0;">
    <h3 style="color: #495057; margin-top: 0;">Registration Details:</h3>
    <ul style="list-style: none; padding: 0;">
      <li><strong>Full Name:</strong> {{full_name}}</li>
      <li><strong>Email:</strong> {{email}}</li>
      <li><strong>Registration Date:</strong> {{registration_date}}</li>
    </ul>
  </div>
  <p>Your document photo has been securely stored and will be used for identification purposes.</p>
  <p>If you have any questions or need to make changes to your registration, please contact our support team.</p>
  <hr style="border: none; border-top: 1px solid #dee2e6; margin: 30px 0;">
  <p style="color: #6c757d; font-size: 14px;">This is an automated message. Please do not reply to this email.</p>
</div>`

const confirmationText = `Patient Registration Confirmed

Dear {{full_name}},

Thank you for registering as a patient with our medical system. Your registration has been successfully completed.

Registration Details:
- Full Name: {{full_name}}
- Email: {{email}}
- Registration Date: {{registration_date}}

Your document photo has been securely stored and will be used for identification purposes.

If you have any questions or need to make changes to your registration, please contact our support team.

This is an automated message. Please do not reply to this email.`

const errorHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #dc3545;">Patient Registration Error</h2>
  <p>An error occurred during patient registration:</p>
  <div style="background-color: #f8d7da; padding: 20px; border-radius: 5px; margin: 20px 0;">
    <h3 style="color: #721c24; margin-top: 0;">Error Details:</h3>
    <p><strong>Error:</strong> {{error}}</p>
    <p><strong>Time:</strong> {{time}}</p>
    <p><strong>Patient Data:</strong></p>
    <pre style="background-color: #f1f3f4; padding: 10px; border-radius: 3px; overflow-x: auto;">{{patient_data}}</pre>
  </div>
</div>`

const errorText = `Patient Registration Error

An error occurred during patient registration:

Error: {{error}}
Time: {{time}}
Patient Data:
{{patient_data}}`

const testHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Test Notification</h2>
  <p>{{message}}</p>
  <p style="color: #6c757d; font-size: 14px;">This is a test message sent to verify notification delivery.</p>
</div>`

const testText = `Test Notification

{{message}}

This is a test message sent to verify notification delivery.`

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      string(KindRegistrationConfirmation),
			Name:    "Registration Confirmation",
			Subject: "Patient Registration Confirmation",
			HTML:    confirmationHTML,
			Text:    confirmationText,
		},
		{
			ID:      string(KindErrorNotification),
			Name:    "Error Notification",
			Subject: "Patient Registration Error",
			HTML:    errorHTML,
			Text:    errorText,
		},
		{
			ID:      string(KindTestNotification),
			Name:    "Test Notification",
			Subject: "Test Notification",
			HTML:    testHTML,
			Text:    testText,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// List returns all registered templates ordered by id.
func (e *TemplateEngine) List() []Template {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Template, 0, len(e.templates))
	for _, t := range e.templates {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using
// the supplied data map. Keys present in the template but absent from
// data are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, html, text string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	html = t.HTML
	text = t.Text
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		html = strings.ReplaceAll(html, placeholder, v)
		text = strings.ReplaceAll(text, placeholder, v)
	}
	return subject, html, text, nil
}
