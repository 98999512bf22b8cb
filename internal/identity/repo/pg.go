package repo

import (
	"context"
	"errors"
	"time"

	"helios/internal/identity"

	"github.com/go-pg/pg/v10"
)

var _ identity.UserRepository = (*Repository)(nil)

type UserModel struct {
	ID           string    `json:"id" pg:"id,pk"`
	Username     string    `json:"username" pg:"username,notnull,unique"`
	Email        string    `json:"email" pg:"email"`
	PasswordHash string    `json:"-" pg:"password_hash,notnull"`
	IsAdmin      bool      `json:"is_admin" pg:"is_admin,use_zero"`
	LastLogin    time.Time `json:"last_login" pg:"last_login"`
	CreatedAt    time.Time `json:"created_at" pg:"created_at,notnull"`
}

type Repository struct {
	db *pg.DB
}

func NewRepository(db *pg.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *identity.User, passwordHash string) error {
	model := &UserModel{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: passwordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
	}

	_, err := r.db.ModelContext(ctx, model).Insert()
	if err != nil {
		var pgErr pg.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return identity.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	model := &UserModel{}
	err := r.db.ModelContext(ctx, model).Where("username = ?", username).Select()
	if err != nil {
		if errors.Is(err, pg.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return toUser(model), nil
}

func (r *Repository) GetCredentials(ctx context.Context, username string) (*identity.User, string, error) {
	model := &UserModel{}
	err := r.db.ModelContext(ctx, model).Where("username = ?", username).Select()
	if err != nil {
		if errors.Is(err, pg.ErrNoRows) {
			return nil, "", identity.ErrUserNotFound
		}
		return nil, "", err
	}
	return toUser(model), model.PasswordHash, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ModelContext(ctx, &UserModel{}).
		Set("last_login = ?", at).
		Where("id = ?", id).
		Update()
	return err
}

func toUser(m *UserModel) *identity.User {
	return &identity.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		IsAdmin:   m.IsAdmin,
		LastLogin: m.LastLogin,
		CreatedAt: m.CreatedAt,
	}
}
