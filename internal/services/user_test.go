package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HammerMeetNail/readshelf/internal/models"
)

func userRow(id uuid.UUID, fullName, email string) Row {
	now := time.Now()
	return rowFromValues(id, fullName, email, "hash", nil, nil, now, now)
}

func TestUserService_Create_EmailExists(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(true)
		},
	}

	service := NewUserService(db)
	_, err := service.Create(context.Background(), models.CreateUserParams{
		FullName:     "Exists",
		Email:        "exists@example.com",
		PasswordHash: "hash",
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestUserService_Create_EmailCheckError(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return errRow(errors.New("boom"))
		},
	}

	service := NewUserService(db)
	_, err := service.Create(context.Background(), models.CreateUserParams{Email: "a@example.com"})
	if err == nil || errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestUserService_Create_UniqueViolation(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if strings.Contains(sql, "SELECT EXISTS") {
				return rowFromValues(false)
			}
			return errRow(&pgconn.PgError{Code: "23505"})
		},
	}

	service := NewUserService(db)
	_, err := service.Create(context.Background(), models.CreateUserParams{Email: "race@example.com"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestUserService_Create_InsertError(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if strings.Contains(sql, "SELECT EXISTS") {
				return rowFromValues(false)
			}
			return errRow(errors.New("insert failed"))
		},
	}

	service := NewUserService(db)
	_, err := service.Create(context.Background(), models.CreateUserParams{Email: "a@example.com"})
	if err == nil || errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected insert error, got %v", err)
	}
}

func TestUserService_Create_Success(t *testing.T) {
	id := uuid.New()
	var insertedEmail string
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if strings.Contains(sql, "SELECT EXISTS") {
				if args[0] != "new@example.com" {
					t.Errorf("existence check used %v, want normalized email", args[0])
				}
				return rowFromValues(false)
			}
			if !strings.Contains(sql, "INSERT INTO users") {
				t.Fatalf("unexpected query: %s", sql)
			}
			insertedEmail = args[1].(string)
			return userRow(id, args[0].(string), insertedEmail)
		},
	}

	service := NewUserService(db)
	user, err := service.Create(context.Background(), models.CreateUserParams{
		FullName:     "New User",
		Email:        "  New@Example.com ",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insertedEmail != "new@example.com" {
		t.Errorf("inserted email = %q, want new@example.com", insertedEmail)
	}
	if user.ID != id || user.FullName != "New User" || user.Email != "new@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Age != nil || user.AvatarURL != nil {
		t.Errorf("expected nil optional fields, got age=%v avatar=%v", user.Age, user.AvatarURL)
	}
}

func TestUserService_GetByID(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		age := 31
		db := &fakeDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
				now := time.Now()
				return rowFromValues(id, "Bob", "bob@example.com", "hash", age, "https://img/bob.png", now, now)
			},
		}
		user, err := NewUserService(db).GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Age == nil || *user.Age != 31 {
			t.Errorf("age = %v, want 31", user.Age)
		}
		if user.AvatarURL == nil || *user.AvatarURL != "https://img/bob.png" {
			t.Errorf("avatar = %v", user.AvatarURL)
		}
	})

	t.Run("not found", func(t *testing.T) {
		db := &fakeDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
				return errRow(pgx.ErrNoRows)
			},
		}
		_, err := NewUserService(db).GetByID(context.Background(), id)
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("query error", func(t *testing.T) {
		db := &fakeDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
				return errRow(errors.New("boom"))
			},
		}
		_, err := NewUserService(db).GetByID(context.Background(), id)
		if err == nil || errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
	})
}

func TestUserService_GetByEmail(t *testing.T) {
	t.Run("normalizes lookup", func(t *testing.T) {
		id := uuid.New()
		db := &fakeDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
				if args[0] != "carol@example.com" {
					t.Errorf("lookup email = %v", args[0])
				}
				return userRow(id, "Carol", "carol@example.com")
			},
		}
		user, err := NewUserService(db).GetByEmail(context.Background(), "Carol@Example.COM")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != id {
			t.Errorf("id = %v, want %v", user.ID, id)
		}
	})

	t.Run("not found", func(t *testing.T) {
		db := &fakeDB{}
		_, err := NewUserService(db).GetByEmail(context.Background(), "nobody@example.com")
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
