package transport

import (
	"github.com/ds124wfegd/gradphoto/internal/service"
)

type SessionHandler struct {
	service service.SessionService
}

func NewSessionHandler(service service.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}
