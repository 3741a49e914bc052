package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/readshelf/internal/models"
)

var ErrNotFriends = errors.New("users are not friends")

type FriendService struct {
	db DB
}

func NewFriendService(db DB) *FriendService {
	return &FriendService{db: db}
}

// ListFriends follows the caller's outgoing edges only.
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.full_name, u.avatar_url
		 FROM friends f
		 JOIN users u ON u.id = f.friend_user_id
		 WHERE f.user_id = $1
		 ORDER BY u.full_name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	friends := []models.Friend{}
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.ID, &f.FullName, &f.AvatarURL); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating friends: %w", err)
	}

	return friends, nil
}

func (s *FriendService) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	var isFriend bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friends WHERE user_id = $1 AND friend_user_id = $2
		)`,
		userID, otherUserID,
	).Scan(&isFriend)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return isFriend, nil
}

// GetProfile returns friendID's profile if userID has an edge to them.
func (s *FriendService) GetProfile(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendProfile, error) {
	isFriend, err := s.IsFriend(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if !isFriend {
		return nil, ErrNotFriends
	}

	profile := &models.FriendProfile{}
	err = s.db.QueryRow(ctx,
		`SELECT id, full_name, age, avatar_url, created_at
		 FROM users WHERE id = $1`,
		friendID,
	).Scan(&profile.ID, &profile.FullName, &profile.Age, &profile.AvatarURL, &profile.MemberSince)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting friend profile: %w", err)
	}

	return profile, nil
}
