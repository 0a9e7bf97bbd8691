package patient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/registration/internal/docstore"
	"github.com/clinic/registration/internal/notify"
	"github.com/clinic/registration/internal/platform/metrics"
)

// Service orchestrates registration: validation, document storage,
// persistence and notification dispatch.
type Service struct {
	repo       Repository
	store      docstore.Store
	dispatcher *notify.Dispatcher
	adminEmail string
	logger     zerolog.Logger
}

// NewService wires the registration orchestrator.
func NewService(repo Repository, store docstore.Store, dispatcher *notify.Dispatcher, adminEmail string, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		store:      store,
		dispatcher: dispatcher,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Register validates the request, stores the document, persists the
// patient and dispatches the confirmation. The returned error is either
// ValidationErrors, ErrDuplicateEmail, or an internal failure.
//
// The FindByEmail pre-check only saves the work of storing a document
// for an obviously duplicate submission; the database unique constraint
// is what actually decides races.
func (s *Service) Register(ctx context.Context, req *RegistrationRequest) (*Patient, error) {
	if errs := Validate(req); len(errs) > 0 {
		metrics.Registrations.WithLabelValues(metrics.OutcomeRejectedInvalid).Inc()
		return nil, errs
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeRejectedDuplicate).Inc()
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrPatientNotFound) {
		return nil, s.fail(err, req)
	}

	ref, err := s.store.Save(ctx, req.Document.Content, documentExt(req.Document))
	if err != nil {
		return nil, s.fail(err, req)
	}

	countryCode, number := SplitPhone(req.Phone)
	p := &Patient{
		FullName:      req.FullName,
		Email:         req.Email,
		CountryCode:   countryCode,
		PhoneNumber:   number,
		DocumentPhoto: ref,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if delErr := s.store.Delete(ctx, ref); delErr != nil {
			s.logger.Warn().Err(delErr).Str("ref", ref).Msg("orphaned document cleanup failed")
		}
		if errors.Is(err, ErrDuplicateEmail) {
			metrics.Registrations.WithLabelValues(metrics.OutcomeRejectedDuplicate).Inc()
			return nil, ErrDuplicateEmail
		}
		return nil, s.fail(err, req)
	}

	metrics.Registrations.WithLabelValues(metrics.OutcomeAccepted).Inc()
	s.logger.Info().Int64("patient_id", p.ID).Str("email", p.Email).Msg("patient registered")

	s.dispatcher.Dispatch(notify.Payload{
		Kind:      notify.KindRegistrationConfirmation,
		Recipient: p.Email,
		Data: map[string]string{
			"full_name":         p.FullName,
			"email":             p.Email,
			"registration_date": p.CreatedAt.Format("2006-01-02"),
		},
	})

	return p, nil
}

// fail records an internal registration failure and alerts the admin
// before handing the error back to the caller.
func (s *Service) fail(err error, req *RegistrationRequest) error {
	metrics.Registrations.WithLabelValues(metrics.OutcomeFailed).Inc()
	s.logger.Error().Err(err).Str("email", req.Email).Msg("patient registration failed")

	submitted, _ := json.Marshal(map[string]string{
		"fullName": req.FullName,
		"email":    req.Email,
		"phone":    req.Phone,
	})
	s.dispatcher.Dispatch(notify.Payload{
		Kind:      notify.KindErrorNotification,
		Recipient: s.adminEmail,
		Data: map[string]string{
			"error":        err.Error(),
			"time":         time.Now().UTC().Format(time.RFC3339),
			"patient_data": string(submitted),
		},
	})

	return err
}

// GetByID returns a single patient.
func (s *Service) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all patients, newest first.
func (s *Service) List(ctx context.Context) ([]*Patient, error) {
	return s.repo.ListAll(ctx)
}

// OpenDocument streams a stored document photo by its reference.
func (s *Service) OpenDocument(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	return s.store.Open(ctx, ref)
}

func documentExt(doc *Document) string {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	if ext != ".jpg" && ext != ".jpeg" {
		ext = ".jpg"
	}
	return ext
}
