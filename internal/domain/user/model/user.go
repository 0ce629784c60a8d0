package model

import (
	"time"

	courseModel "coursehub/internal/domain/course/model"
	"coursehub/pkg/model"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// ParseRole accepts "admin" or "client"; empty defaults to client.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleClient, true
	case RoleAdmin, RoleClient:
		return Role(s), true
	}
	return "", false
}

type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

type Location struct {
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
}

// User 用户模型
type User struct {
	model.BaseModel
	Name            string       `gorm:"not null" json:"name"`
	Email           string       `gorm:"uniqueIndex;not null" json:"email"`
	Password        string       `json:"-"` // 密码不返回给前端
	HasPassword     bool         `gorm:"not null;default:false" json:"hasPassword"`
	Role            Role         `gorm:"type:varchar(20);index;not null" json:"role"`
	GoogleID        *string      `gorm:"uniqueIndex" json:"googleId,omitempty"`
	AuthProvider    AuthProvider `gorm:"type:varchar(20);not null" json:"authProvider"`
	IsEmailVerified bool         `gorm:"not null;default:false" json:"isEmailVerified"`
	ProfilePicture  *string      `json:"profilePicture"`
	Phone           *string      `json:"phone"`
	Bio             *string      `gorm:"type:text" json:"bio"`
	Location        Location     `gorm:"embedded;embeddedPrefix:location_" json:"location"`

	EnrolledCourses []courseModel.Course `gorm:"-" json:"enrolledCourses,omitempty"`
}

// Enrollment grants a user access to a course. The composite key makes it unique.
type Enrollment struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	CourseID  string    `gorm:"primaryKey;type:varchar(36);index" json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the public account shape returned by auth endpoints.
type Summary struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Role           Role         `json:"role"`
	AuthProvider   AuthProvider `json:"authProvider"`
	HasPassword    bool         `json:"hasPassword"`
	ProfilePicture *string      `json:"profilePicture,omitempty"`
}

func (u *User) Summary() Summary {
	return Summary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		AuthProvider:   u.AuthProvider,
		HasPassword:    u.HasPassword,
		ProfilePicture: u.ProfilePicture,
	}
}
