package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation asks the holder of RecipientEmail to become friends with the inviter.
// AcceptedAt is set once and the row is never deleted.
type Invitation struct {
	ID             uuid.UUID  `json:"id"`
	InviterID      uuid.UUID  `json:"inviterId"`
	RecipientEmail string     `json:"recipientEmail"`
	Token          string     `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	AcceptedAt     *time.Time `json:"acceptedAt,omitempty"`
}

// IsExpired reports whether the invitation's expiry is strictly before now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}

func (i *Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// InvitationPreview is the public view of an invitation looked up by token.
type InvitationPreview struct {
	InviterName    string     `json:"inviterName"`
	RecipientEmail string     `json:"recipientEmail"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	AcceptedAt     *time.Time `json:"acceptedAt,omitempty"`
}

// ReceivedInvitation is a pending invitation addressed to the caller.
type ReceivedInvitation struct {
	Invitation
	InviterName string `json:"inviterName"`
}

type AcceptResult struct {
	Accepted        bool `json:"accepted"`
	AlreadyAccepted bool `json:"alreadyAccepted,omitempty"`
}
