package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword возвращает bcrypt-хэш пароля с DefaultCost
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword сравнивает bcrypt-хэш с паролем
func CheckPassword(hash string, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Credentials учётные записи операторов из конфигурации
type Credentials struct {
	users  map[string]string
	admins map[string]bool
}

// NewCredentials создаёт набор учётных записей: users имя -> bcrypt-хэш
func NewCredentials(users map[string]string, admins []string) *Credentials {
	c := &Credentials{users: make(map[string]string, len(users)), admins: make(map[string]bool, len(admins))}
	for name, hash := range users {
		c.users[name] = hash
	}
	for _, name := range admins {
		c.admins[name] = true
	}
	return c
}

// Authenticate проверяет пароль. Возвращает признак администратора.
func (c *Credentials) Authenticate(username, password string) (isAdmin bool, ok bool) {
	if c == nil {
		return false, false
	}
	hash, found := c.users[username]
	if !found || !CheckPassword(hash, password) {
		return false, false
	}
	return c.admins[username], true
}
