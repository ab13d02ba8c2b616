package entity

const (
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
)

type Appointment struct {
	ID              int    `gorm:"primaryKey"`
	UserID          int    `gorm:"not null;index"` // References: users(id)
	ClientID        *int   `gorm:"index"`          // References: clients(id), walk-ins only
	ServiceID       string `gorm:"not null;default:''"`
	Title           string `gorm:"not null"`
	Description     string
	StartsAt        int64  `gorm:"not null;index"`
	DurationMinutes int    `gorm:"not null;default:0"` // 0 on legacy rows: recovered from Description
	Location        string `gorm:"not null;default:''"`
	Status          string `gorm:"not null;default:'confirmed'"`
	IsDeleted       bool   `gorm:"not null"`
	CreatedAt       int64  `gorm:"not null"`
	UpdatedAt       int64  `gorm:"not null"`

	// Relations
	Attendees []Attendee `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE"`
}

type Attendee struct {
	ID            int    `gorm:"primaryKey"`
	AppointmentID int    `gorm:"not null;index"` // References: appointments(id)
	Name          string `gorm:"not null"`
	Email         string `gorm:"not null"`
	Phone         string
	RSVP          string `gorm:"not null;default:'yes'"`
}
