package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

const userColumns = `id, email, password_hash, display_name, avatar_url, user_type, rating, skills, created_at`

type UserRepositoryAdapter struct {
	db *sqlx.DB
}

func NewUserRepositoryAdapter(db *sqlx.DB) *UserRepositoryAdapter {
	return &UserRepositoryAdapter{db: db}
}

func (r *UserRepositoryAdapter) Create(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.DisplayName, user.AvatarURL,
		string(user.UserType), user.Rating, pq.StringArray(user.Skills), user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.New(apperror.ErrCodeConflict, "пользователь с таким email уже существует")
		}
		return storeErr(err, "не удалось создать пользователя")
	}
	return nil
}

func (r *UserRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepositoryAdapter) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email)
}

func (r *UserRepositoryAdapter) findOne(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	var row userRow
	if err := executor(ctx, r.db).GetContext(ctx, &row, query, arg); err != nil {
		if noRows(err) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, storeErr(err, "не удалось получить пользователя")
	}
	return row.toEntity(), nil
}

func (r *UserRepositoryAdapter) UpdateUserType(ctx context.Context, id uuid.UUID, userType valueobject.UserType) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `UPDATE users SET user_type = $2 WHERE id = $1`, id, string(userType))
	if err != nil {
		return storeErr(err, "не удалось обновить тип пользователя")
	}
	return requireAffected(res, apperror.ErrUserNotFound)
}

func (r *UserRepositoryAdapter) ListFreelancers(ctx context.Context, limit int) ([]*entity.User, error) {
	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE user_type = 'freelancer' ORDER BY rating DESC, created_at DESC LIMIT $1`
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, storeErr(err, "не удалось получить исполнителей")
	}
	result := make([]*entity.User, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

type userRow struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	DisplayName  string         `db:"display_name"`
	AvatarURL    string         `db:"avatar_url"`
	UserType     string         `db:"user_type"`
	Rating       float64        `db:"rating"`
	Skills       pq.StringArray `db:"skills"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (u *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		DisplayName:  u.DisplayName,
		AvatarURL:    u.AvatarURL,
		UserType:     valueobject.UserType(u.UserType),
		Rating:       u.Rating,
		Skills:       nonNil(u.Skills),
		CreatedAt:    u.CreatedAt,
	}
}
