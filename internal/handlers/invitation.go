package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/readshelf/internal/logging"
	"github.com/HammerMeetNail/readshelf/internal/models"
	"github.com/HammerMeetNail/readshelf/internal/services"
)

type InvitationHandler struct {
	invitationService services.InvitationServiceInterface
	baseURL           string
}

func NewInvitationHandler(invitationService services.InvitationServiceInterface, baseURL string) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		baseURL:           strings.TrimRight(baseURL, "/"),
	}
}

type CreateInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CreateInvitationResponse struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token"`
	Link  string    `json:"link"`
}

type InvitationPreviewResponse struct {
	Invitation *models.InvitationPreview `json:"invitation"`
	Expired    bool                      `json:"expired"`
}

type InvitationListResponse struct {
	Invitations []models.ReceivedInvitation `json:"invitations"`
}

func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateInvitationRequest
	if msg, ok := decodeAndValidate(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	invitation, err := h.invitationService.Create(r.Context(), identity.UserID, req.Email)
	if err != nil {
		logging.Error("Error creating invitation", logging.Fields{"error": err, "user_id": identity.UserID.String()})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusCreated, CreateInvitationResponse{
		ID:    invitation.ID,
		Token: invitation.Token,
		Link:  h.baseURL + "/invitations/" + invitation.Token,
	})
}

// Preview is public: anyone holding the token may see who sent it.
func (h *InvitationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Invalid invitation token")
		return
	}

	preview, expired, err := h.invitationService.GetPreview(r.Context(), token)
	if errors.Is(err, services.ErrInvitationNotFound) {
		writeError(w, http.StatusNotFound, "Invitation not found")
		return
	}
	if err != nil {
		logging.Error("Error loading invitation", logging.Fields{"error": err})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, InvitationPreviewResponse{Invitation: preview, Expired: expired})
}

func (h *InvitationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	invitations, err := h.invitationService.ListPending(r.Context(), identity.UserID)
	if err != nil {
		logging.Error("Error listing invitations", logging.Fields{"error": err, "user_id": identity.UserID.String()})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, InvitationListResponse{Invitations: invitations})
}

func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	invitationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invitation ID")
		return
	}

	result, err := h.invitationService.Accept(r.Context(), invitationID, identity.UserID)
	switch {
	case errors.Is(err, services.ErrInvitationNotFound):
		writeError(w, http.StatusNotFound, "Invitation not found")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrInvitationNotAddressed):
		writeError(w, http.StatusForbidden, "Invitation is not addressed to you")
	case errors.Is(err, services.ErrInvitationExpired):
		writeError(w, http.StatusForbidden, "Invitation has expired")
	case errors.Is(err, services.ErrCannotAcceptOwnInvitation):
		writeError(w, http.StatusForbidden, "Cannot accept your own invitation")
	case err != nil:
		logging.Error("Error accepting invitation", logging.Fields{
			"error":         err,
			"invitation_id": invitationID.String(),
			"user_id":       identity.UserID.String(),
		})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}
