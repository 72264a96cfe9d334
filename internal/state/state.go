package state

import (
	"find-the-saboteur-be/internal/config"
	"find-the-saboteur-be/internal/service"
)

type AppState struct {
	Cfg        *config.AppConfig
	SessionSvc *service.SessionService
}

func NewAppState(
	cfg *config.AppConfig,
	sessionSvc *service.SessionService,
) *AppState {
	return &AppState{
		Cfg:        cfg,
		SessionSvc: sessionSvc,
	}
}
