package models

import "time"

// GalleryItem is a public photo; Description is unique and acts as its key
type GalleryItem struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	Description string    `json:"description" gorm:"uniqueIndex;not null;size:500"`
	ImageURL    string    `json:"image_url" gorm:"not null;size:500"`
	CreatedBy   string    `json:"created_by,omitempty" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (GalleryItem) TableName() string {
	return "gallery_items"
}

// NewsItem is a public post; Title is unique and acts as its key
type NewsItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"uniqueIndex;not null;size:300"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NewsItem) TableName() string {
	return "news_items"
}
