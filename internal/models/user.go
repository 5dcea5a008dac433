package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// User is an identity resolved from the identity provider. It is not stored locally.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Admin is a member of the admin roster, keyed by identity principal.
// The partial unique index admits at most one super admin row.
type Admin struct {
	Principal    string    `json:"principal" gorm:"primaryKey;size:255"`
	IsSuperAdmin bool      `json:"is_super_admin" gorm:"not null;default:false;uniqueIndex:idx_admins_single_super,where:is_super_admin"`
	AddedBy      string    `json:"added_by,omitempty" gorm:"size:255"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}

type AdminResponse struct {
	Principal    string `json:"principal"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// UserProfile is created by the caller on first login
type UserProfile struct {
	Principal string    `json:"principal" gorm:"primaryKey;size:255"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// AllModels lists every persisted model for migrations
func AllModels() []any {
	return []any{
		&Candidate{},
		&CandidateStatusChange{},
		&AdmissionCounter{},
		&GalleryItem{},
		&NewsItem{},
		&Admin{},
		&UserProfile{},
	}
}
