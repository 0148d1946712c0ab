package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderApple  AuthProvider = "apple"
)

// User is the identity record. Balance and stat columns are denormalized counters:
// token_balance mirrors the ledger, lesson/hour totals mirror completed sessions and
// the rating columns mirror the rating table. Only aggregates write them.
type User struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string       `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password        string       `gorm:"not null;column:password" json:"-"`
	FirstName       string       `gorm:"not null;column:first_name" json:"firstName"`
	LastName        string       `gorm:"not null;column:last_name" json:"lastName"`
	DisplayName     string       `gorm:"column:display_name" json:"displayName,omitempty"`
	Bio             string       `gorm:"column:bio" json:"bio,omitempty"`
	ProfilePhoto    string       `gorm:"column:profile_photo" json:"profilePhoto,omitempty"`
	AvatarBucketKey string       `gorm:"column:avatar_bucket_key" json:"-"`
	PhoneNumber     string       `gorm:"column:phone_number" json:"phoneNumber,omitempty"`
	Country         string       `gorm:"column:country;index" json:"country,omitempty"`
	TimeZone        string       `gorm:"column:time_zone" json:"timeZone,omitempty"`
	Language        string       `gorm:"column:language;not null;default:en" json:"language"`
	Role            Role         `gorm:"column:role;not null;default:user" json:"role"`
	AuthProvider    AuthProvider `gorm:"column:auth_provider;not null;default:email" json:"authProvider"`

	IsEmailVerified    bool `gorm:"column:is_email_verified;not null;default:false" json:"isEmailVerified"`
	IsPhoneVerified    bool `gorm:"column:is_phone_verified;not null;default:false" json:"isPhoneVerified"`
	IsIdentityVerified bool `gorm:"column:is_identity_verified;not null;default:false" json:"isIdentityVerified"`

	TokenBalance      int64 `gorm:"column:token_balance;not null;default:0;check:token_balance >= 0" json:"tokenBalance"`
	TotalTokensEarned int64 `gorm:"column:total_tokens_earned;not null;default:0" json:"totalTokensEarned"`
	TotalTokensSpent  int64 `gorm:"column:total_tokens_spent;not null;default:0" json:"totalTokensSpent"`

	TotalLessonsTaught   int     `gorm:"column:total_lessons_taught;not null;default:0" json:"totalLessonsTaught"`
	TotalLessonsAttended int     `gorm:"column:total_lessons_attended;not null;default:0" json:"totalLessonsAttended"`
	TotalLearningHours   float64 `gorm:"column:total_learning_hours;not null;default:0" json:"totalLearningHours"`
	TotalTeachingHours   float64 `gorm:"column:total_teaching_hours;not null;default:0" json:"totalTeachingHours"`

	AverageRatingAsTeacher float64 `gorm:"column:average_rating_as_teacher;not null;default:0" json:"averageRatingAsTeacher"`
	AverageRatingAsLearner float64 `gorm:"column:average_rating_as_learner;not null;default:0" json:"averageRatingAsLearner"`
	TotalRatingsAsTeacher  int     `gorm:"column:total_ratings_as_teacher;not null;default:0" json:"totalRatingsAsTeacher"`
	TotalRatingsAsLearner  int     `gorm:"column:total_ratings_as_learner;not null;default:0" json:"totalRatingsAsLearner"`

	CurrentStreak  int        `gorm:"column:current_streak;not null;default:0" json:"currentStreak"`
	LongestStreak  int        `gorm:"column:longest_streak;not null;default:0" json:"longestStreak"`
	LastActiveDate *time.Time `gorm:"column:last_active_date" json:"lastActiveDate,omitempty"`

	IsActive  bool `gorm:"column:is_active;not null;default:true" json:"isActive"`
	IsBlocked bool `gorm:"column:is_blocked;not null;default:false" json:"isBlocked"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName is the display name when set, otherwise "First Last".
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func IsKnownRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	default:
		return false
	}
}
