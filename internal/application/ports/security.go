package ports

// PasswordHasher превращает пароль в хэш для колонки users.password.
// Политика (алгоритм, cost) задаётся реализацией.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
