package models

import (
	"time"

	"github.com/google/uuid"
)

// Friendship is one directed edge; a mutual friendship is two rows.
type Friendship struct {
	UserID       uuid.UUID `json:"userId"`
	FriendUserID uuid.UUID `json:"friendUserId"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Friend struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
}

type FriendProfile struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"fullName"`
	Age         *int      `json:"age,omitempty"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	MemberSince time.Time `json:"memberSince"`
}
