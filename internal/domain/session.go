package domain

// ============================================================
// Auth: upstream /auth/register/ and /auth/login/
// ============================================================

// User is the account record returned by the backend alongside a token.
type User struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	DateJoined  string `json:"date_joined,omitempty"`
}

// RegisterRequest is the body for POST /auth/register/.
type RegisterRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// LoginRequest is the body for POST /auth/login/.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Session is the authenticated state of one browser session.
// A nil or empty Token means "not authenticated".
type Session struct {
	Token string `json:"-"`
	User  *User  `json:"user"`
}

// Authenticated reports whether the session holds a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// AuthMode selects which auth form is shown while logged out.
type AuthMode string

const (
	AuthModeRegister AuthMode = "register"
	AuthModeLogin    AuthMode = "login"
)

// ParseAuthMode maps anything that is not "login" to register.
func ParseAuthMode(s string) AuthMode {
	if s == string(AuthModeLogin) {
		return AuthModeLogin
	}
	return AuthModeRegister
}

// View describes which UI regions are visible for the current session.
type View struct {
	Authenticated bool     `json:"authenticated"`
	AuthStatus    string   `json:"auth_status"`
	AuthMode      AuthMode `json:"auth_mode,omitempty"`
	ShowAuthNav   bool     `json:"show_auth_nav"`
	ShowRegister  bool     `json:"show_register"`
	ShowLogin     bool     `json:"show_login"`
	ShowProfile   bool     `json:"show_profile"`
	ShowOrders    bool     `json:"show_orders"`
	ShowPurchases bool     `json:"show_purchases"`
}
