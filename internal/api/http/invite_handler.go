package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"company-invites/internal/config"
	"company-invites/internal/logger"
	"company-invites/internal/security"
	"company-invites/internal/service"
)

const maxBodyBytes = 1 << 20

// InviteOptions select the response contract of the invite endpoint
type InviteOptions struct {
	IncludeInviteLink bool
	StatusPolicy      string
	ResponseEnvelope  bool
}

// InviteHandler serves the bulk invite endpoint
type InviteHandler struct {
	invites service.InviteService
	opts    InviteOptions
}

func NewInviteHandler(invites service.InviteService, opts InviteOptions) *InviteHandler {
	if opts.StatusPolicy == "" {
		opts.StatusPolicy = config.StatusPolicyConventional
	}
	return &InviteHandler{invites: invites, opts: opts}
}

type inviteRequest struct {
	Emails json.RawMessage `json:"emails"`
	URL    json.RawMessage `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type envelope struct {
	Result any `json:"result"`
}

// HandlePreflight answers CORS preflight requests
func (h *InviteHandler) HandlePreflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "POST")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Length, X-JSON")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

// HandleInvite resolves the caller, validates the body and runs the batch
func (h *InviteHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := h.invites.ResolveCaller(ctx, security.BearerToken(r.Header.Get("Authorization")))
	if err != nil {
		h.writeError(w, err)
		return
	}

	emails, inviteURL, err := h.decode(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	outcomes, err := h.invites.InviteUsers(ctx, caller, emails, inviteURL)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if h.opts.ResponseEnvelope {
		writeJSON(w, http.StatusOK, envelope{Result: outcomes})
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}

func (h *InviteHandler) decode(r *http.Request) ([]string, string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return nil, "", service.ErrInvalidBody
	}

	var req inviteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, "", service.ErrInvalidBody
	}

	if isAbsent(req.Emails) {
		return nil, "", service.ErrEmailsRequired
	}
	var emails []string
	if err := json.Unmarshal(req.Emails, &emails); err != nil {
		return nil, "", service.ErrEmailsRequired
	}

	if !h.opts.IncludeInviteLink {
		return emails, "", nil
	}
	var inviteURL string
	if isAbsent(req.URL) || json.Unmarshal(req.URL, &inviteURL) != nil || inviteURL == "" {
		return nil, "", service.ErrURLRequired
	}
	if _, err := service.ParseInviteBaseURL(inviteURL); err != nil {
		return nil, "", service.ErrURLRequired
	}
	return emails, inviteURL, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

var requestErrors = []struct {
	err    error
	status int
}{
	{service.ErrInvalidBody, http.StatusBadRequest},
	{service.ErrEmailsRequired, http.StatusBadRequest},
	{service.ErrURLRequired, http.StatusBadRequest},
	{service.ErrUnknownCaller, http.StatusUnauthorized},
	{service.ErrNoCompany, http.StatusForbidden},
	{service.ErrCallerLookup, http.StatusInternalServerError},
}

func (h *InviteHandler) writeError(w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	for _, re := range requestErrors {
		if errors.Is(err, re.err) {
			status, msg = re.status, re.err.Error()
			break
		}
	}
	if status == http.StatusInternalServerError {
		logger.Error("Invite request failed", "error", err)
	}

	if h.opts.StatusPolicy == config.StatusPolicyLegacy {
		status = http.StatusOK
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}
