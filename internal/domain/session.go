package domain

import "time"

// SessionRecord is the durable-tier row for one console session. Token is
// populated only when the session was saved with remember=true; otherwise
// the token lives in the volatile tier and this column stays empty.
type SessionRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:64;uniqueIndex;not null" json:"session_id"`
	UserBlob  []byte    `gorm:"size:2048" json:"-"`
	Token     string    `gorm:"size:512" json:"-"`
	Remember  bool      `gorm:"not null" json:"remember"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
