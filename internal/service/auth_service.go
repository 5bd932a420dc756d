package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/validation"
)

// AuthService инкапсулирует регистрацию и вход.
type AuthService struct {
	users        repository.UserRepository
	tokenManager *TokenManager
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	UserType    string
	Skills      []string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает пользователя и его access токен.
type AuthResult struct {
	User  *entity.User
	Token *AccessToken
}

func NewAuthService(users repository.UserRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{users: users, tokenManager: tokenManager}
}

// Register создаёт пользователя. Тип пользователя необязателен: клиентом
// пользователь становится и при первом созданном заказе.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(in.Skills); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	userType, err := valueobject.NewUserType(in.UserType)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	user, err := entity.NewUser(email, string(hash), in.DisplayName, userType, in.Skills)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokenManager.Issue(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login проверяет учётные данные и выпускает токен.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": user.ID,
		}).Warn("auth service: неверный пароль")
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokenManager.Issue(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return &AuthResult{User: user, Token: token}, nil
}
