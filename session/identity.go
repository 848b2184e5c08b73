package session

// Identity is the signed-in user a request acts for. A nil *Identity means
// no session.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}
