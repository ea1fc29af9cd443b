package models

import (
	"ems/src/types"
)

type User struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"unique" json:"email,omitempty"`
	types.Timestamps
}
