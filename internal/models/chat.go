package models

import "time"

// TelegramLink ties a telegram account to a lecturer identity.
type TelegramLink struct {
	Username string    `json:"username"`
	Lecturer string    `json:"lecturer"`
	LinkedAt time.Time `json:"linked_at"`
	LinkedBy int64     `json:"linked_by"`
}
