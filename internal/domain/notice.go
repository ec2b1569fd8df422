package domain

import "time"

// NoticeLevel distinguishes transient toasts from blocking alerts.
type NoticeLevel string

const (
	NoticeToast NoticeLevel = "toast"
	NoticeAlert NoticeLevel = "alert"
)

// Notice is a user-facing message queued for the next render.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}
