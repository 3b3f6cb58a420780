package domain

import (
	"time"
)

// CREATE TABLE public.categories (
//     id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name         TEXT UNIQUE NOT NULL,
//     description  TEXT,
//     created_at   TIMESTAMPTZ DEFAULT NOW()
// );

type Category struct {
	ID          uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;type:text;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
