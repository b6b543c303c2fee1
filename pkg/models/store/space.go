package store

// SpaceNode is the backend's space tree node.
type SpaceNode struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Children []SpaceNode `json:"children"`
}

// Entity is a meter, store, station, ... as listed under a space.
type Entity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	UUID string `json:"uuid,omitempty"`
}

// ErrorBody is the backend's failure envelope.
type ErrorBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LoginEnvelope wraps the credentials the way the backend expects: {"data": {...}}.
type LoginEnvelope struct {
	Data LoginRequest `json:"data"`
}

type LoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type LoginResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	UUID        string `json:"uuid"`
	Token       string `json:"token"`
}
