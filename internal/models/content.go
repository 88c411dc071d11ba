package models

import "time"

// Content-plan rows (events, instagram, telegram) are read and written by
// schema-driven SQL in the contentplan package; the three bucket tables
// share no single struct. Only the sub-resources below are gorm models.

// ContentAsset is an attached reference (URL, notes) supporting production
// of a single publication. Assets never attach to events.
type ContentAsset struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Channel   string  `gorm:"not null" json:"channel"`
	ContentID int     `gorm:"not null" json:"contentId"`
	Title     string  `gorm:"not null" json:"title"`
	URL       *string `json:"url"`
	Notes     *string `json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name for ContentAsset.
func (ContentAsset) TableName() string {
	return "content_assets"
}

// ContentTaskLink joins a task to a publication. The schema enforces at most
// one link per (task_id, channel, content_id) and cascades link removal when
// the task is deleted.
type ContentTaskLink struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	TaskID    string `gorm:"not null" json:"taskId"`
	Channel   string `gorm:"not null" json:"channel"`
	ContentID int    `gorm:"not null" json:"contentId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name for ContentTaskLink.
func (ContentTaskLink) TableName() string {
	return "content_task_links"
}
