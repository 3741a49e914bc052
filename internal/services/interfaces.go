package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/readshelf/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthServiceInterface defines the contract for password handling.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
}

// TokenServiceInterface defines the contract for issuing and verifying tokens.
type TokenServiceInterface interface {
	IssuePair(identity models.Identity) (*TokenPair, error)
	Verify(token string) (*Claims, error)
}

// InvitationServiceInterface defines the contract for friend invitations.
type InvitationServiceInterface interface {
	Create(ctx context.Context, inviterID uuid.UUID, recipientEmail string) (*models.Invitation, error)
	GetPreview(ctx context.Context, token string) (*models.InvitationPreview, bool, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]models.ReceivedInvitation, error)
	Accept(ctx context.Context, invitationID, userID uuid.UUID) (*models.AcceptResult, error)
}

// FriendServiceInterface defines the contract for read-only friendship queries.
type FriendServiceInterface interface {
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error)
	IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
	GetProfile(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendProfile, error)
}

var (
	_ UserServiceInterface       = (*UserService)(nil)
	_ AuthServiceInterface       = (*AuthService)(nil)
	_ TokenServiceInterface      = (*TokenService)(nil)
	_ InvitationServiceInterface = (*InvitationService)(nil)
	_ FriendServiceInterface     = (*FriendService)(nil)
)
