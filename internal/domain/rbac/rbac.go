// Пакет rbac — роли пользователей планировщика и правила доступа.
// Ролей две: USER (чтение) и ADMIN (чтение, запись, управление пользователями).
package rbac

import "strings"

// Роли в порядке возрастания привилегий.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// NormalizeRole приводит роль к каноническому виду (верхний регистр).
// Пустая строка означает роль по умолчанию — USER.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return RoleUser
	}
	return role
}

// Allows проверяет, что роль не ниже требуемой.
// Неизвестная роль не даёт доступа ни к чему.
func Allows(role, required string) bool {
	w, ok := roleWeight[role]
	if !ok {
		return false
	}
	return w >= roleWeight[required]
}

// CanChangePassword — сменить пароль можно себе или, будучи ADMIN, любому.
func CanChangePassword(actorID, actorRole, targetID string) bool {
	return actorID == targetID || actorRole == RoleAdmin
}

// RequiresOldPassword — старый пароль нужен всем, кроме администратора,
// меняющего пароль другому пользователю.
func RequiresOldPassword(actorID, actorRole, targetID string) bool {
	return actorRole != RoleAdmin || actorID == targetID
}
