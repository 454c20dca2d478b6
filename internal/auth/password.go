package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength — минимальная длина пароля.
const MinPasswordLength = 6

// passwordCost — стоимость bcrypt.
const passwordCost = 12

// ErrPasswordTooShort — пароль короче MinPasswordLength.
var ErrPasswordTooShort = fmt.Errorf("пароль должен содержать не менее %d символов", MinPasswordLength)

// HashPassword возвращает bcrypt-хэш пароля.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хэширования пароля: %w", err)
	}
	return string(hash), nil
}

// CheckPassword сравнивает пароль с хэшем.
// Возвращает false при несовпадении или повреждённом хэше.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
