package model

import "time"

type Reward struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Cost        int       `json:"cost"`
	Claimed     bool      `json:"claimed"`
	ChildID     int64     `json:"childId"`
	CreatedAt   time.Time `json:"createdAt"`

	Child *UserRef `json:"child,omitempty"`
}
