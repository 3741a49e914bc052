package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/readshelf/internal/models"
)

const (
	DefaultInvitationTTL = 7 * 24 * time.Hour
	invitationTokenBytes = 24
)

var (
	ErrInvitationNotFound        = errors.New("invitation not found")
	ErrInvitationNotAddressed    = errors.New("invitation is not addressed to this user")
	ErrInvitationExpired         = errors.New("invitation has expired")
	ErrCannotAcceptOwnInvitation = errors.New("inviter cannot accept their own invitation")
)

const invitationColumns = `id, inviter_id, recipient_email, token, created_at, expires_at, accepted_at`

type InvitationService struct {
	db  DB
	ttl time.Duration
	now func() time.Time
}

func NewInvitationService(db DB, ttl time.Duration) *InvitationService {
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	return &InvitationService{db: db, ttl: ttl, now: time.Now}
}

// SetClock replaces the time source used for creation, expiry and acceptance.
func (s *InvitationService) SetClock(now func() time.Time) {
	s.now = now
}

// Create stores an invitation for recipientEmail. The recipient does not need
// an account; an invitation for an unknown email simply never matches on accept.
func (s *InvitationService) Create(ctx context.Context, inviterID uuid.UUID, recipientEmail string) (*models.Invitation, error) {
	token, err := generateInvitationToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	invitation, err := scanInvitation(s.db.QueryRow(ctx,
		`INSERT INTO friend_invitations (inviter_id, recipient_email, token, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+invitationColumns,
		inviterID, models.NormalizeEmail(recipientEmail), token, now, now.Add(s.ttl),
	))
	if err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	return invitation, nil
}

// GetPreview looks up an invitation by its token and reports whether it has expired.
func (s *InvitationService) GetPreview(ctx context.Context, token string) (*models.InvitationPreview, bool, error) {
	preview := &models.InvitationPreview{}
	err := s.db.QueryRow(ctx,
		`SELECT u.full_name, fi.recipient_email, fi.expires_at, fi.accepted_at
		 FROM friend_invitations fi
		 JOIN users u ON u.id = fi.inviter_id
		 WHERE fi.token = $1`,
		token,
	).Scan(&preview.InviterName, &preview.RecipientEmail, &preview.ExpiresAt, &preview.AcceptedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrInvitationNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("load invitation preview: %w", err)
	}
	return preview, preview.ExpiresAt.Before(s.now()), nil
}

// ListPending returns unaccepted, unexpired invitations addressed to the user's email.
func (s *InvitationService) ListPending(ctx context.Context, userID uuid.UUID) ([]models.ReceivedInvitation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fi.id, fi.inviter_id, fi.recipient_email, fi.token, fi.created_at, fi.expires_at, fi.accepted_at, inviter.full_name
		 FROM friend_invitations fi
		 JOIN users me ON me.email = fi.recipient_email
		 JOIN users inviter ON inviter.id = fi.inviter_id
		 WHERE me.id = $1
		   AND fi.accepted_at IS NULL
		   AND fi.expires_at >= $2
		 ORDER BY fi.created_at DESC`,
		userID, s.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	invitations := []models.ReceivedInvitation{}
	for rows.Next() {
		var inv models.ReceivedInvitation
		if err := rows.Scan(&inv.ID, &inv.InviterID, &inv.RecipientEmail, &inv.Token,
			&inv.CreatedAt, &inv.ExpiresAt, &inv.AcceptedAt, &inv.InviterName); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return invitations, nil
}

// Accept makes userID and the inviter mutual friends. The invitation row is
// locked for the whole transaction, so concurrent accepts run one after the
// other; accepting an already accepted invitation only re-ensures both edges.
func (s *InvitationService) Accept(ctx context.Context, invitationID, userID uuid.UUID) (*models.AcceptResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin accept transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	invitation, err := scanInvitation(tx.QueryRow(ctx,
		`SELECT `+invitationColumns+`
		 FROM friend_invitations
		 WHERE id = $1
		 FOR UPDATE`,
		invitationID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invitation: %w", err)
	}

	var email string
	err = tx.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load accepting user: %w", err)
	}

	if invitation.RecipientEmail != models.NormalizeEmail(email) {
		return nil, ErrInvitationNotAddressed
	}

	now := s.now()
	if invitation.IsExpired(now) {
		return nil, ErrInvitationExpired
	}

	result := &models.AcceptResult{Accepted: true}

	if invitation.IsAccepted() {
		if err := ensureMutualFriendship(ctx, tx, invitation.InviterID, userID); err != nil {
			return nil, err
		}
		result.AlreadyAccepted = true
	} else {
		if invitation.InviterID == userID {
			return nil, ErrCannotAcceptOwnInvitation
		}
		if err := ensureMutualFriendship(ctx, tx, invitation.InviterID, userID); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE friend_invitations SET accepted_at = $1 WHERE id = $2`,
			now, invitation.ID,
		); err != nil {
			return nil, fmt.Errorf("mark invitation accepted: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit accept: %w", err)
	}
	committed = true

	return result, nil
}

// ensureMutualFriendship inserts (a,b) and (b,a) when missing. The guarded
// insert never violates a constraint when another transaction got there first.
func ensureMutualFriendship(ctx context.Context, q Querier, a, b uuid.UUID) error {
	for _, pair := range [2][2]uuid.UUID{{a, b}, {b, a}} {
		if _, err := q.Exec(ctx,
			`INSERT INTO friends (user_id, friend_user_id)
			 SELECT $1, $2
			 WHERE NOT EXISTS (
			   SELECT 1 FROM friends WHERE user_id = $1 AND friend_user_id = $2
			 )`,
			pair[0], pair[1],
		); err != nil {
			return fmt.Errorf("insert friendship edge: %w", err)
		}
	}
	return nil
}

func scanInvitation(row Row) (*models.Invitation, error) {
	inv := &models.Invitation{}
	err := row.Scan(&inv.ID, &inv.InviterID, &inv.RecipientEmail, &inv.Token,
		&inv.CreatedAt, &inv.ExpiresAt, &inv.AcceptedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func generateInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
