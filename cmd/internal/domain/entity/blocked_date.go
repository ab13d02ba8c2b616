package entity

const (
	RecurrenceNone    = ""
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

type BlockedDate struct {
	ID         int    `gorm:"primaryKey"`
	Day        string `gorm:"uniqueIndex;not null;size:10"` // YYYY-MM-DD
	Reason     string `gorm:"not null"`
	Recurrence string `gorm:"not null;default:''"`
	CreatedBy  int    `gorm:"not null"` // References: users(id)
	CreatedAt  int64  `gorm:"not null"`
	UpdatedAt  int64  `gorm:"not null"`
}
