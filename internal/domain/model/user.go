// Пакет model — доменные модели планировщика.
package model

import "time"

// User — учётная запись для входа в систему.
// Хранится в таблице users. С Person не связан.
type User struct {
	// ID — UUID записи
	ID string
	// Name — отображаемое имя
	Name string
	// Email — адрес электронной почты (уникальный, используется для входа)
	Email string
	// PasswordHash — bcrypt-хэш пароля, наружу не отдаётся
	PasswordHash string
	// Role — роль (ADMIN, USER)
	Role string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}
