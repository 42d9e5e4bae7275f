package model

import "time"

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Completed   bool      `json:"completed"`
	ChildID     int64     `json:"childId"`
	ParentID    int64     `json:"parentId"`
	CreatedAt   time.Time `json:"createdAt"`

	// Child is joined for parent listings, Parent for child listings.
	Child  *UserRef `json:"child,omitempty"`
	Parent *UserRef `json:"parent,omitempty"`
}
