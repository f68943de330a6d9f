package domain

// Claims — полезная нагрузка компактного токена.
// Явная структура вместо map[string]interface{}: состав claims фиксирован,
// и exp должен выставляться только кодеком, а не приходить снаружи.
type Claims struct {
	Issuer  string `json:"iss"`
	Subject string `json:"sub"`
	Email   string `json:"email"`
	UserID  string `json:"userId"`
	Role    string `json:"role"`
	// ExpiresAt — Unix-время в секундах. Заполняется кодеком при выпуске.
	ExpiresAt int64 `json:"exp"`
}

// IsAdmin упрощает проверки доступа в хендлерах.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Роли пользователей. Других значений в системе нет.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// LoginRequest — тело запроса на выпуск токена.
// iss и sub исторически приходят от клиента и попадают в claims как есть.
type LoginRequest struct {
	Issuer   string `json:"iss"`
	Subject  string `json:"sub"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type User struct {
	ID    string `json:"userId"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserUpdate — частичное обновление: nil-поля не трогаем.
type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Empty сообщает, есть ли вообще что обновлять.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil
}
