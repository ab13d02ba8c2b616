package entity

// Service is an entry of the salon's catalogue.
type Service struct {
	ID              string  `gorm:"primaryKey;size:64"`
	Name            string  `gorm:"not null"`
	Description     string  `gorm:"not null"`
	DurationMinutes int     `gorm:"not null"`
	Price           float64 `gorm:"not null"`
	IsActive        bool    `gorm:"not null"`
	CreatedAt       int64   `gorm:"not null"`
	UpdatedAt       int64   `gorm:"not null"`
}
