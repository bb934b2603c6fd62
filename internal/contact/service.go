// Package contact accepts contact form submissions: it validates them, checks
// the signed form token, stores the lead and hands it off for archiving.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/signing"
)

// FailureMessage is what visitors see when a submission cannot be stored.
const FailureMessage = "Failed to submit the form. Please try again."

// SuccessMessage is shown after a stored submission.
const SuccessMessage = "Thank you for your message! We'll get back to you soon."

// Submission outcomes reported to the observer.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

var (
	// ErrInvalid wraps every ValidationError.
	ErrInvalid = errors.New("contact: invalid submission")
	// ErrToken means the form token is missing, forged or expired.
	ErrToken = errors.New("contact: invalid form token")
	// ErrStore means the data source rejected the submission.
	ErrStore = errors.New("contact: store submission")
)

// Form is what the visitor posted. Phone is optional.
type Form struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	Token   string
}

func (f Form) trimmed() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
		Token:   strings.TrimSpace(f.Token),
	}
}

// ValidationError lists per-field problems, keyed by form field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %d field(s)", ErrInvalid, len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate checks required fields and the email address.
func (f Form) Validate() error {
	f = f.trimmed()
	fields := map[string]string{}
	if f.Name == "" {
		fields["name"] = "Name is required."
	}
	if f.Email == "" {
		fields["email"] = "Email is required."
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		fields["email"] = "Please enter a valid email address."
	}
	if f.Subject == "" {
		fields["subject"] = "Subject is required."
	}
	if f.Message == "" {
		fields["message"] = "Message is required."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Dispatcher hands a stored submission to the archive pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub model.ContactSubmission) error
}

// Options configures a Service.
type Options struct {
	Sink       datasource.Sink
	Dispatcher Dispatcher
	Signer     *signing.Signer
	FormTTL    time.Duration
	Logger     logrus.FieldLogger
	// Observe is told the outcome of every submission.
	Observe func(outcome string)
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Service accepts contact submissions.
type Service struct {
	opts Options
}

// NewService builds a Service. Sink and Signer are required.
func NewService(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.FormTTL <= 0 {
		opts.FormTTL = 2 * time.Hour
	}
	if opts.Observe == nil {
		opts.Observe = func(string) {}
	}
	return &Service{opts: opts}
}

// IssueToken returns a fresh signed token for a rendered form.
func (s *Service) IssueToken() string {
	return s.opts.Signer.Token(s.opts.NewID(), s.opts.Now().Add(s.opts.FormTTL))
}

// Submit validates, stores and dispatches a submission. Dispatch failures
// are logged and do not fail the submission.
func (s *Service) Submit(ctx context.Context, form Form) (model.ContactSubmission, error) {
	form = form.trimmed()
	if err := form.Validate(); err != nil {
		s.opts.Observe(OutcomeInvalid)
		return model.ContactSubmission{}, err
	}
	now := s.opts.Now()
	if _, err := s.opts.Signer.Verify(form.Token, now); err != nil {
		s.opts.Observe(OutcomeInvalid)
		return model.ContactSubmission{}, fmt.Errorf("%w: %w", ErrToken, err)
	}

	sub := model.ContactSubmission{
		ID:        s.opts.NewID(),
		Name:      form.Name,
		Email:     form.Email,
		Phone:     form.Phone,
		Subject:   form.Subject,
		Message:   form.Message,
		CreatedAt: now.UTC(),
	}
	log := s.logger().WithField("submission", sub.ID)

	if err := s.opts.Sink.Insert(ctx, model.CollectionContactSubmissions, sub.Row()); err != nil {
		log.WithError(err).Error("error submitting form")
		s.opts.Observe(OutcomeFailed)
		return model.ContactSubmission{}, fmt.Errorf("%w: %w", ErrStore, err)
	}
	if s.opts.Dispatcher != nil {
		if err := s.opts.Dispatcher.Dispatch(ctx, sub); err != nil {
			log.WithError(err).Warn("archive dispatch failed")
		}
	}
	log.Info("contact submission stored")
	s.opts.Observe(OutcomeSuccess)
	return sub, nil
}

func (s *Service) logger() logrus.FieldLogger {
	if s.opts.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.opts.Logger
}
