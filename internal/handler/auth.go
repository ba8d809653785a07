package handler

import (
	"net/http"

	"github.com/hatch-ir/hatch/internal/auth"
	"github.com/hatch-ir/hatch/internal/model"
	"github.com/hatch-ir/hatch/internal/service"
)

// AuthHandler holds the passwordless sign-in endpoints.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RequestCode handles POST /auth/otp/request
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req model.OTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.RequestCode(r.Context(), req.Email, req.FullName); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionResponse is returned on successful verification.
type sessionResponse struct {
	Token   string         `json:"token"`
	Profile *model.Profile `json:"profile"`
}

// VerifyCode handles POST /auth/otp/verify
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req model.OTPVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	userID, err := h.svc.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, profile, err := h.svc.IssueToken(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to open session")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, Profile: profile})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	profile, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /me/profile. Email is immutable and absent from
// the payload.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	var in model.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
