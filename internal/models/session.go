package models

import "time"

// Статусы сессии удалённого доступа.
const (
	SessionActive = "active"
	SessionEnded  = "ended"
)

// Session представляет сессию удалённого доступа к устройству.
// SessionID — публичный токен сессии, отличный от внутреннего ID.
type Session struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	DeviceID  string     `json:"device_id"`
	UserID    string     `json:"user_id"`
	AdminID   *string    `json:"admin_id,omitempty"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
