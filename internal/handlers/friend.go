package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/readshelf/internal/logging"
	"github.com/HammerMeetNail/readshelf/internal/models"
	"github.com/HammerMeetNail/readshelf/internal/services"
)

type FriendHandler struct {
	friendService services.FriendServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

type FriendListResponse struct {
	Friends []models.Friend `json:"friends"`
}

type FriendProfileResponse struct {
	Profile *models.FriendProfile `json:"profile"`
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), identity.UserID)
	if err != nil {
		logging.Error("Error listing friends", logging.Fields{"error": err, "user_id": identity.UserID.String()})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, FriendListResponse{Friends: friends})
}

func (h *FriendHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friendID, err := uuid.Parse(r.PathValue("friendId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid friend ID")
		return
	}

	profile, err := h.friendService.GetProfile(r.Context(), identity.UserID, friendID)
	if errors.Is(err, services.ErrNotFriends) {
		writeError(w, http.StatusForbidden, "You are not friends with this user")
		return
	}
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logging.Error("Error getting friend profile", logging.Fields{"error": err, "user_id": identity.UserID.String()})
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, FriendProfileResponse{Profile: profile})
}
