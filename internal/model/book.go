package model

import "time"

type Book struct {
	ID                 string `gorm:"primaryKey" json:"id"`
	Title              string `gorm:"not null" json:"title"`
	Author             string `gorm:"not null" json:"author"`
	Genre              string `gorm:"not null" json:"genre"`
	Condition          string `gorm:"not null" json:"condition"`
	AvailabilityStatus string `gorm:"default:Available" json:"availabilityStatus"`
	Description        string `json:"description"`

	OwnerID string `gorm:"index; not null" json:"ownerId"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"owner"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
