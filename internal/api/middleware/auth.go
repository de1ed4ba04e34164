package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"audit-service/internal/api/responses"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by JWTAuth.
const (
	UsernameKey = "username"
	RolesKey    = "roles"
)

// IssueToken gera um token HS256 com username, roles e expiração.
func IssueToken(secret, username string, roles []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt: secret vazio")
	}
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"roles":    roles,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return claims.SignedString([]byte(secret))
}

// ParseToken valida o token e devolve username e roles.
func ParseToken(secret, tokenString string) (string, []string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", nil, errors.New("claims inválidos")
	}
	username, _ := claims["username"].(string)
	var roles []string
	if raw, ok := claims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	return username, roles, nil
}

// JWTAuth exige um Bearer token assinado com secret.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.Error(c, http.StatusUnauthorized, "Cabeçalho Authorization obrigatório")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			responses.Error(c, http.StatusUnauthorized, "Formato esperado: Bearer <token>")
			return
		}
		username, roles, err := ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			responses.Error(c, http.StatusUnauthorized, "Token inválido ou expirado")
			return
		}
		c.Set(UsernameKey, username)
		c.Set(RolesKey, roles)
		c.Next()
	}
}
