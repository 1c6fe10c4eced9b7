package domain

// User Model (profile document, keyed by the identity uid)
type User struct {
	UID   string  `gorm:"primaryKey;size:36" json:"uid"`              // Identity id, immutable
	Name  string  `gorm:"not null" json:"name"`                       // Display name
	Email string  `gorm:"uniqueIndex;size:191;not null" json:"email"` // Email, immutable after registration
	Image *string `gorm:"size:1024" json:"image,omitempty"`           // Remote avatar URL
}

// Identity is the authenticated principal reported by an authentication provider
type Identity struct {
	UID   string `json:"uid"`   // Identity id
	Email string `json:"email"` // Email used to sign in
}
