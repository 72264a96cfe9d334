package dto

import "find-the-saboteur-be/internal/service/game"

type CreateSessionRequest struct {
	SessionName string `json:"session_name"`
	CreatorName string `json:"creator_name"`
}

type CreateSessionResponse struct {
	SessionID   string           `json:"session_id"`
	SessionName string           `json:"session_name"`
	Creator     game.Participant `json:"creator"`
}

type AddBotsRequest struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
}

type AddBotsResponse struct {
	BotNames []string `json:"bot_names"`
}

type StartSessionRequest struct {
	SessionID string `json:"session_id"`
	StarterID int    `json:"starter_id"`
}

type ResetSessionRequest struct {
	SessionID string `json:"session_id"`
}
