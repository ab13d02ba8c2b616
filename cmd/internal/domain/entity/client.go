package entity

type ClientPreferences struct {
	FavoriteServices []string `json:"favorite_services,omitempty"`
	PreferredTimes   []string `json:"preferred_times,omitempty"`
	Allergies        []string `json:"allergies,omitempty"`
	SpecialRequests  string   `json:"special_requests,omitempty"`
}

type Client struct {
	ID          int    `gorm:"primaryKey"`
	UserID      *int   `gorm:"index"` // References: users(id), set when the client has an account
	Name        string `gorm:"not null"`
	Email       string `gorm:"uniqueIndex;not null"`
	Phone       string `gorm:"not null"`
	Notes       string
	IsBanned    bool              `gorm:"not null"`
	Roles       []string          `gorm:"serializer:json"`
	Preferences ClientPreferences `gorm:"serializer:json"`
	DateJoined  int64             `gorm:"not null"`
	LastUpdated int64             `gorm:"not null"`
}
