package model

import "time"

// Alert is an admin-authored broadcast notice. Append/delete only, no
// relation to facilities.
type Alert struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
