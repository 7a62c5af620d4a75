package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T) *Issuer {
	secret, err := GenerateSecureSecret()
	if err != nil {
		t.Fatalf("Ошибка генерации секрета: %v", err)
	}
	is, err := NewIssuer(secret)
	if err != nil {
		t.Fatalf("Ошибка создания Issuer: %v", err)
	}
	return is
}

// TestGenerateAndValidate тестирует создание и валидацию токена
func TestGenerateAndValidate(t *testing.T) {
	is := newTestIssuer(t)

	token, err := is.Generate("builder", true, time.Hour)
	if err != nil {
		t.Fatalf("Ошибка генерации JWT: %v", err)
	}

	// Проверяем, что токен содержит точки (разделители частей JWT)
	if strings.Count(token, ".") != 2 {
		t.Errorf("Неверный формат JWT токена: %s", token)
	}

	claims, err := is.Validate(token)
	if err != nil {
		t.Fatalf("Валидный токен определен как недействительный: %v", err)
	}
	if claims.Subject != "builder" {
		t.Errorf("Неверный subject: %s", claims.Subject)
	}
	if !claims.IsAdmin {
		t.Error("Потерян флаг администратора")
	}
}

// TestValidateInvalidJWT тестирует валидацию недействительных токенов
func TestValidateInvalidJWT(t *testing.T) {
	is := newTestIssuer(t)

	testCases := []string{
		"invalid.token.here",
		"",
		"not.a.jwt",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	}

	for _, invalidToken := range testCases {
		if _, err := is.Validate(invalidToken); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Недействительный токен '%s' прошел валидацию", invalidToken)
		}
	}
}

// TestTokenFromOtherIssuer токен с чужим секретом не принимается
func TestTokenFromOtherIssuer(t *testing.T) {
	a := newTestIssuer(t)
	b := newTestIssuer(t)

	token, err := a.Generate("builder", true, time.Hour)
	if err != nil {
		t.Fatalf("Ошибка генерации JWT: %v", err)
	}
	if _, err := b.Validate(token); err == nil {
		t.Error("Токен чужого Issuer прошел валидацию")
	}
}

// TestExpiredToken истёкший токен недействителен
func TestExpiredToken(t *testing.T) {
	is := newTestIssuer(t)

	token, err := is.Generate("builder", true, -time.Minute)
	if err != nil {
		t.Fatalf("Ошибка генерации JWT: %v", err)
	}
	if _, err := is.Validate(token); err == nil {
		t.Error("Истёкший токен прошел валидацию")
	}
}

// TestNewIssuerSecrets тестирует проверку секрета
func TestNewIssuerSecrets(t *testing.T) {
	if _, err := NewIssuer(""); err != nil {
		t.Errorf("Пустой секрет должен заменяться случайным: %v", err)
	}

	invalidSecrets := []string{
		"too-short",
		"invalid-base64-@#$%",
		"c2hvcnQ=", // "short"
	}
	for _, invalidSecret := range invalidSecrets {
		if _, err := NewIssuer(invalidSecret); err == nil {
			t.Errorf("Недействительный секрет '%s' был принят", invalidSecret)
		}
	}
}

// TestGenerateSecureSecret тестирует генерацию секретного ключа
func TestGenerateSecureSecret(t *testing.T) {
	secret1, err1 := GenerateSecureSecret()
	if err1 != nil {
		t.Fatalf("Ошибка генерации первого секрета: %v", err1)
	}

	secret2, err2 := GenerateSecureSecret()
	if err2 != nil {
		t.Fatalf("Ошибка генерации второго секрета: %v", err2)
	}

	if secret1 == secret2 {
		t.Error("Два последовательных вызова GenerateSecureSecret вернули одинаковый результат")
	}

	// Проверяем минимальную длину (base64 от 32 байт = ~44 символа)
	if len(secret1) < 40 || len(secret2) < 40 {
		t.Error("Секрет слишком короткий")
	}
}
