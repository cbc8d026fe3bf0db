package model

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId uuid.UUID `gorm:"type:uuid;not null;index"`
	Question  string    `gorm:"type:text;not null;default:''"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Question) TableName() string {
	return "questions"
}
