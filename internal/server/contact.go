package server

import (
	"errors"
	"net/http"

	"github.com/pqui/archstudio/internal/contact"
	"github.com/pqui/archstudio/internal/site"
	"github.com/pqui/archstudio/internal/views"
)

const maxContactBody = 64 << 10

func (s *Server) handleContactForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, views.ContactPage(s.state(r, site.PageContact), views.ContactForm{
		Token: s.contact.IssueToken(),
	}))
}

func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := contact.Form{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
		Token:   r.PostForm.Get("token"),
	}
	view := views.ContactForm{Values: form, Token: s.contact.IssueToken()}

	_, err := s.contact.Submit(r.Context(), form)
	status := http.StatusOK
	var invalid *contact.ValidationError
	switch {
	case err == nil:
		view.Success = true
	case errors.As(err, &invalid):
		view.Errors = invalid.Fields
		status = http.StatusUnprocessableEntity
	case errors.Is(err, contact.ErrToken):
		s.log.WithError(err).Warn("contact form token rejected")
		view.Failure = contact.FailureMessage
		status = http.StatusBadRequest
	default:
		view.Failure = contact.FailureMessage
		status = http.StatusInternalServerError
	}
	s.render(w, r, status, views.ContactPage(s.state(r, site.PageContact), view))
}
