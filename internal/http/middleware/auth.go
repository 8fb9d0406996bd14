package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tatamehub/academia/internal/auth"
)

type contextKey string

const (
	ContextKeySubject  contextKey = "subject"
	ContextKeyTipo     contextKey = "tipo"
	ContextKeyAcademia contextKey = "academia"
	ContextKeyProfile  contextKey = "profile"
)

// Auth valida JWT de acesso e injeta claims no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			if claims.Tipo == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "tipo de perfil ausente")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyTipo, strings.ToLower(claims.Tipo))
			if claims.AcademiaID != "" {
				ctx = context.WithValue(ctx, ContextKeyAcademia, claims.AcademiaID)
			}
			if claims.ProfileID != "" {
				ctx = context.WithValue(ctx, ContextKeyProfile, claims.ProfileID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetTipo recupera o tipo de perfil do contexto.
func GetTipo(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyTipo).(string)
	return val
}

// GetAcademia recupera a academia da sessão, se houver.
func GetAcademia(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyAcademia).(string)
	return val
}

// GetProfile recupera o perfil da sessão, se houver.
func GetProfile(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyProfile).(string)
	return val
}

// RequireTipos garante que a sessão tenha um dos tipos informados.
func RequireTipos(tipos ...string) func(http.Handler) http.Handler {
	normalized := make([]string, 0, len(tipos))
	for _, tipo := range tipos {
		tipo = strings.ToLower(strings.TrimSpace(tipo))
		if tipo != "" {
			normalized = append(normalized, tipo)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atual := GetTipo(r.Context())
			for _, tipo := range normalized {
				if atual == tipo {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso")
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
