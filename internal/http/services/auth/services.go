package auth

// Services agrupa los services de autenticación first-party.
type Services struct {
	Session SessionService
}

func NewServices(d Deps) Services {
	return Services{Session: NewSessionService(d)}
}
