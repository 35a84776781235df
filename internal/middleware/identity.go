package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskPlanner/internal/models/user"
)

// Заголовки, которыми фронтенд мини-приложения передаёт пользователя хоста
const (
	HeaderUserID       = "X-Telegram-User-Id"
	HeaderUserName     = "X-Telegram-User-Name"
	HeaderUserLanguage = "X-Telegram-Language"
)

const UserKey contextKey = "host_user"

// Identity без заголовка пользователь анонимный
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := user.Anonymous()

		if id := strings.TrimSpace(r.Header.Get(HeaderUserID)); id != "" {
			u.ID = id
			u.DisplayName = strings.TrimSpace(r.Header.Get(HeaderUserName))
			if lang := strings.TrimSpace(r.Header.Get(HeaderUserLanguage)); lang != "" {
				u.LanguageCode = lang
			}
		}

		ctx := context.WithValue(r.Context(), UserKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserFromContext(ctx context.Context) user.HostUser {
	if u, ok := ctx.Value(UserKey).(user.HostUser); ok {
		return u
	}
	return user.Anonymous()
}
