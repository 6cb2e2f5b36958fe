package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/thaivisachecklist/server/internal/api/problem"
	"github.com/thaivisachecklist/server/internal/contact"
	"github.com/thaivisachecklist/server/internal/metrics"
)

const (
	contactTitle       = "Contact"
	contactDescription = "Send a question or a correction to Thai Visa Checklist."

	deliveryFailedMessage = "Internal server error"
	formRetryMessage      = "Sorry, your message could not be sent. Please try again in a moment."
)

// ContactHandler accepts contact messages from the HTML form and the JSON
// endpoint and hands them to the contact service.
type ContactHandler struct {
	Views   *Views
	Service *contact.Service
}

func NewContactHandler(views *Views, service *contact.Service) *ContactHandler {
	return &ContactHandler{Views: views, Service: service}
}

type contactData struct {
	Sent      bool
	Reference string
	Error     string
	Name      string
	Email     string
	Message   string
}

type contactResponse struct {
	Success bool `json:"success"`
}

// Form handles GET /contact. After a successful post the visitor lands
// here with ?sent=<reference>.
func (h *ContactHandler) Form(w http.ResponseWriter, r *http.Request) {
	data := contactData{}
	if ref := r.URL.Query().Get("sent"); ref != "" {
		data.Sent = true
		data.Reference = ref
	}
	h.renderForm(w, r, http.StatusOK, data)
}

func (h *ContactHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data contactData) {
	w.Header().Set("Cache-Control", "no-store")
	h.Views.render(w, r, status, "contact", h.Views.page(w, r, contactTitle, contactDescription, data))
}

// SubmitForm handles POST /contact from the HTML form.
func (h *ContactHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		metrics.RecordContactSubmit(false)
		writeBodyError(w, r, err, h.Views.Env)
		return
	}

	data := contactData{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Message: r.PostForm.Get("message"),
	}

	sub, err := h.Service.Validator().DecodeForm(r.PostForm)
	if err != nil {
		metrics.RecordContactSubmit(false)
		data.Error = err.Error()
		h.renderForm(w, r, http.StatusBadRequest, data)
		return
	}

	receipt, err := h.Service.Submit(r.Context(), sub)
	if err != nil {
		metrics.RecordContactSubmit(false)
		data.Error = formRetryMessage
		h.renderForm(w, r, http.StatusInternalServerError, data)
		return
	}

	metrics.RecordContactSubmit(true)
	http.Redirect(w, r, "/contact?sent="+url.QueryEscape(receipt.ID), http.StatusSeeOther)
}

// SubmitJSON handles POST /api/contact. Errors are problem documents whose
// title is the message shown to the visitor.
func (h *ContactHandler) SubmitJSON(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.RecordContactSubmit(false)
		writeBodyError(w, r, err, h.Views.Env)
		return
	}

	_, err = h.Service.SubmitJSON(r.Context(), body)
	if err != nil {
		metrics.RecordContactSubmit(false)

		var validationErr *contact.ValidationError
		switch {
		case errors.As(err, &validationErr):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, validationErr.Error(), nil, h.Views.Env,
				problem.WithErrors(map[string]any{validationErr.Field: string(validationErr.Kind)}))
		case errors.Is(err, contact.ErrMalformedBody):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeBadRequest, "Invalid request body", err, h.Views.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, deliveryFailedMessage, err, h.Views.Env)
		}
		return
	}

	metrics.RecordContactSubmit(true)
	writeJSON(w, http.StatusOK, contactResponse{Success: true})
}

// writeBodyError reports a body that could not be read, which is almost
// always one over the size limit.
func writeBodyError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeTooLarge, "Request body too large", err, env)
		return
	}
	problem.Write(w, r, http.StatusBadRequest, problem.TypeBadRequest, "Invalid request body", err, env)
}
