package domain

// Session attribute keys kept in local storage.
const (
	SessionKeyLoggedIn    = "is_logged_in"
	SessionKeyUserName    = "user_name"
	SessionKeyDisplayName = "user_display_name"
	SessionKeyUserUUID    = "user_uuid"
	SessionKeyToken       = "token"
)

// LoginRedirectURL is where an invalid session sends the hosting shell.
const LoginRedirectURL = "/authentication/basic/login"

type Session struct {
	LoggedIn    bool
	UserName    string
	DisplayName string
	UserUUID    string
	Token       string
}

func (s Session) Valid() bool {
	return s.LoggedIn && s.Token != "" && s.UserUUID != ""
}

// Credentials are the headers every backend call carries.
type Credentials struct {
	UserUUID string
	Token    string
}

func (s Session) Credentials() Credentials {
	return Credentials{UserUUID: s.UserUUID, Token: s.Token}
}
