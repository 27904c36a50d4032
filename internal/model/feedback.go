package model

import "time"

type IssueType string

const (
	IssueBadSmell    IssueType = "bad-smell"
	IssueNoWater     IssueType = "no-water"
	IssueBrokenFlush IssueType = "broken-flush"
	IssueDirty       IssueType = "dirty"
	IssueOther       IssueType = "other"
)

// Valid reports whether t is one of the known issue types.
func (t IssueType) Valid() bool {
	switch t {
	case IssueBadSmell, IssueNoWater, IssueBrokenFlush, IssueDirty, IssueOther:
		return true
	}
	return false
}

// Feedback is an immutable issue report: once written it is never edited or
// deleted by the app.
type Feedback struct {
	ID          string    `json:"id"`
	ToiletID    string    `json:"toilet_id"`
	UserID      string    `json:"user_id"`
	Rating      int       `json:"rating"`
	Cleanliness int       `json:"cleanliness"`
	IssueType   IssueType `json:"issue_type"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeedbackWithDetails joins user and facility display fields for read paths.
// The join is presentation-only; nothing here is stored back.
type FeedbackWithDetails struct {
	Feedback
	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	FacilityName string `json:"facility_name"`
}
