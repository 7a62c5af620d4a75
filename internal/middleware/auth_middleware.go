package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/annel0/arena-maps/internal/auth"
)

// Ключи gin.Context, заполняемые JWT middleware
const (
	SubjectKey = "subject"
	IsAdminKey = "is_admin"
)

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JWT проверяет токен в заголовке Authorization: Bearer <token>
func JWT(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: "Отсутствует токен авторизации"})
			return
		}

		// Проверяем формат "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: "Неверный формат токена"})
			return
		}

		claims, err := issuer.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: "Недействительный токен"})
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(IsAdminKey, claims.IsAdmin)
		c.Next()
	}
}

// RequireAdmin пропускает только токены администратора. Ставится после JWT.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(IsAdminKey) {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Message: "Недостаточно прав доступа"})
			return
		}
		c.Next()
	}
}
