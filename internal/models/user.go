package models

import "time"

// User represents an application account. Passwords and credential storage
// are owned by the external auth service; this table carries identity and
// role only.
type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	LastName    string  `gorm:"not null" json:"lastName"`
	FirstName   string  `gorm:"not null" json:"firstName"`
	MiddleName  *string `json:"middleName"`
	BirthDate   *string `json:"birthDate"`
	GroupNumber *string `json:"groupNumber"`
	Login       string  `gorm:"uniqueIndex;not null" json:"login"`
	Position    *string `json:"position"`
	Role        string  `gorm:"not null" json:"role"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName joins the name parts the way the front end renders them.
func (u User) DisplayName() string {
	name := u.FirstName
	if u.MiddleName != nil && *u.MiddleName != "" {
		name += " " + *u.MiddleName
	}
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
