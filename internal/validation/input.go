package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinDisplayNameLength    = 2
	MaxDisplayNameLength    = 100
	MinJobTitleLength       = 3
	MaxJobTitleLength       = 200
	MaxJobDescriptionLength = 5000
	MaxCoverLetterLength    = 2000
	MaxInvitationMessage    = 1000
	MaxSkillLength          = 50
	MaxSkillsCount          = 50
	MaxAttachmentsCount     = 20
	MinPasswordLength       = 8
	MaxBudget               = 100000000.0 // 100 миллионов
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength проверяет длину строки в символах. Ноль в min или max отключает границу.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}
	local, domain := parts[0], parts[1]

	if len(local) == 0 || len(local) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if !emailLocalRegex.MatchString(local) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domain) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}
	return nil
}

// ValidatePassword: не короче 8 символов, есть буква и цифра.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}

	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsNumber(r):
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return fmt.Errorf("пароль должен содержать буквы и цифры")
	}
	return nil
}

// ValidateDisplayName допускает пустое имя: тогда оно берётся из email.
func ValidateDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil
	}
	return ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength)
}

func ValidateJobTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("название заказа обязательно")
	}
	return ValidateLength("название заказа", title, MinJobTitleLength, MaxJobTitleLength)
}

func ValidateJobDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("описание заказа обязательно")
	}
	return ValidateLength("описание заказа", description, 0, MaxJobDescriptionLength)
}

func ValidateCoverLetter(coverLetter string) error {
	coverLetter = strings.TrimSpace(coverLetter)
	if coverLetter == "" {
		return fmt.Errorf("сопроводительное письмо обязательно")
	}
	return ValidateLength("сопроводительное письмо", coverLetter, 0, MaxCoverLetterLength)
}

func ValidateInvitationMessage(message string) error {
	return ValidateLength("сообщение приглашения", strings.TrimSpace(message), 0, MaxInvitationMessage)
}

// ValidateBudget проверяет верхнюю границу суммы; знак и порядок min/max проверяет домен.
func ValidateBudget(amounts ...float64) error {
	for _, a := range amounts {
		if a > MaxBudget {
			return fmt.Errorf("бюджет не может превышать %.0f", MaxBudget)
		}
	}
	return nil
}

// ValidateSkills проверяет массив навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if utf8.RuneCountInString(skill) > MaxSkillLength {
			return fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
		}
		lower := strings.ToLower(skill)
		if seen[lower] {
			return fmt.Errorf("навык '%s' указан дважды", skill)
		}
		seen[lower] = true
	}
	return nil
}

func ValidateAttachments(attachments []string) error {
	if len(attachments) > MaxAttachmentsCount {
		return fmt.Errorf("не более %d вложений", MaxAttachmentsCount)
	}
	return nil
}
