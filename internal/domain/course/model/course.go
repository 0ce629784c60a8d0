package model

import (
	"coursehub/pkg/model"
	"coursehub/pkg/money"

	"gorm.io/datatypes"
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type AccessType string

const (
	AccessLifetime AccessType = "lifetime"
	AccessLimited  AccessType = "limited"
)

func (a AccessType) Valid() bool {
	return a == AccessLifetime || a == AccessLimited
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Lecture is one video in a section. VideoURL may be empty until media is uploaded.
type Lecture struct {
	Title         string `json:"title"`
	VideoURL      string `json:"videoUrl"`
	Duration      string `json:"duration,omitempty"`
	IsFreePreview bool   `json:"isFreePreview"`
}

type Section struct {
	SectionTitle string    `json:"sectionTitle"`
	Lectures     []Lecture `json:"lectures"`
}

// Creator is the slice of the users table shown alongside a course.
type Creator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (Creator) TableName() string { return "users" }

// Course 课程模型
type Course struct {
	model.BaseModel
	Title                string                       `gorm:"not null" json:"title"`
	ShortDescription     string                       `gorm:"not null" json:"shortDescription"`
	FullDescription      string                       `gorm:"type:text;not null" json:"fullDescription"`
	Category             string                       `gorm:"index;not null" json:"category"`
	Level                Level                        `gorm:"type:varchar(20);default:Beginner" json:"level"`
	Language             string                       `gorm:"default:Hindi" json:"language"`
	Tags                 datatypes.JSONSlice[string]  `json:"tags"`
	Thumbnail            string                       `gorm:"not null" json:"thumbnail"`
	PromoVideo           string                       `json:"promoVideo,omitempty"`
	MainVideos           datatypes.JSONSlice[string]  `json:"mainVideos"`
	Curriculum           datatypes.JSONSlice[Section] `json:"curriculum"`
	Price                money.Amount                 `gorm:"not null;default:0" json:"price"`
	DiscountPrice        *money.Amount                `json:"discountPrice"`
	IsFree               bool                         `gorm:"default:false" json:"isFree"`
	AccessType           AccessType                   `gorm:"type:varchar(20);default:lifetime" json:"accessType"`
	CertificateAvailable bool                         `gorm:"default:false" json:"certificateAvailable"`
	Status               Status                       `gorm:"type:varchar(20);index;default:draft" json:"status"`
	TotalStudents        int64                        `gorm:"not null;default:0" json:"totalStudents"`
	Ratings              float64                      `gorm:"default:0" json:"ratings"`
	CreatedBy            string                       `gorm:"type:varchar(36);index;not null" json:"createdById"`
	Creator              *Creator                     `gorm:"foreignKey:CreatedBy" json:"createdBy,omitempty"`
}

// Free reports whether the course is granted without payment.
func (c *Course) Free() bool {
	return c.IsFree || c.Price.IsZero()
}

// PayableAmount is the discount price when set and positive, otherwise the list price.
func (c *Course) PayableAmount() money.Amount {
	if c.DiscountPrice != nil && c.DiscountPrice.Positive() {
		return *c.DiscountPrice
	}
	return c.Price
}

// ApplyDefaults fills enum defaults for fields left empty.
func (c *Course) ApplyDefaults() {
	if c.Level == "" {
		c.Level = LevelBeginner
	}
	if c.Language == "" {
		c.Language = "Hindi"
	}
	if c.AccessType == "" {
		c.AccessType = AccessLifetime
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if c.Tags == nil {
		c.Tags = datatypes.JSONSlice[string]{}
	}
	if c.Curriculum == nil {
		c.Curriculum = datatypes.JSONSlice[Section]{}
	}
}
