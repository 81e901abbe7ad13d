package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"not null"`
	Avatar         string    `json:"avatar" gorm:"size:255"`
	Confirmed      bool      `json:"-" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	Contacts       []Contact `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
