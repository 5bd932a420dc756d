package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	DisplayName  string
	AvatarURL    string
	UserType     valueobject.UserType
	Rating       float64
	Skills       []string
	CreatedAt    time.Time
}

func NewUser(email, passwordHash, displayName string, userType valueobject.UserType, skills []string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный email")
	}
	if passwordHash == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "пароль обязателен")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		UserType:     userType,
		Skills:       normalizeList(skills),
		CreatedAt:    time.Now(),
	}, nil
}

// Card возвращает данные для денормализации в заказ.
func (u *User) Card() ClientCard {
	return ClientCard{Name: u.DisplayName, Avatar: u.AvatarURL}
}

func (u *User) IsClient() bool {
	return u.UserType == valueobject.UserTypeClient
}
