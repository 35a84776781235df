package user

import "strings"

// HostUser данные пользователя, которые передаёт хост мини-приложения
type HostUser struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	LanguageCode string `json:"language_code"`
}

const DefaultLanguage = "ru"

func Anonymous() HostUser {
	return HostUser{LanguageCode: DefaultLanguage}
}

func (u HostUser) IsAnonymous() bool {
	return strings.TrimSpace(u.ID) == ""
}

// Namespace ключ слота хранилища для коллекции пользователя.
// Для анонимного режима используется сам ключ коллекции.
func (u HostUser) Namespace(collection string) string {
	if u.IsAnonymous() {
		return collection
	}
	return strings.TrimSpace(u.ID) + ":" + collection
}
