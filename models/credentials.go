package models

type UserId string

type Identity struct {
	UserId UserId
	Email  string
}

// Credentials of the caller, read from the bearer token.
type Credentials struct {
	ActorIdentity Identity // for audit log
	Role          Role
}
