package models

import "time"

// Role is the authorization tier of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleMainAdmin Role = "main-admin"
)

// ParseRole validates a role coming from a request. An empty string yields RoleUser.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleUser, true
	case RoleUser, RoleAdmin, RoleMainAdmin:
		return Role(s), true
	}
	return "", false
}

// CanAuthor reports whether the role may create and edit blog posts.
func (r Role) CanAuthor() bool {
	return r == RoleAdmin || r == RoleMainAdmin
}

// User is a registered account. Password holds the bcrypt hash, never the plaintext.
// VerifyOTP and VerifyOTPExpireAt are written and cleared together.
type User struct {
	ID                string     `json:"id" bson:"_id" gorm:"type:text;primaryKey;not null"`
	Name              string     `json:"name" bson:"name" gorm:"type:text;not null"`
	Email             string     `json:"email" bson:"email" gorm:"type:text;not null;uniqueIndex:idx_users_email"`
	Password          string     `json:"-" bson:"password" gorm:"type:text;not null"`
	Role              Role       `json:"role" bson:"role" gorm:"type:text;not null;default:'user'"`
	IsAccountVerified bool       `json:"isAccountVerified" bson:"isAccountVerified" gorm:"column:is_account_verified;not null;default:false"`
	VerifyOTP         *string    `json:"-" bson:"verifyOtp" gorm:"column:verify_otp;type:text"`
	VerifyOTPExpireAt *time.Time `json:"-" bson:"verifyOtpExpireAt" gorm:"column:verify_otp_expire_at;type:timestamptz"`
	CreatedAt         time.Time  `json:"createdAt" bson:"createdAt" gorm:"type:timestamptz;not null"`
}

// HasOTP reports whether a one-time code is pending on the user.
func (u *User) HasOTP() bool {
	return u.VerifyOTP != nil && u.VerifyOTPExpireAt != nil
}

// UserData is the profile returned to the signed-in user.
type UserData struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	IsAccountVerified bool   `json:"isAccountVerified"`
	Role              Role   `json:"role"`
}

func (u *User) Data() UserData {
	return UserData{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		IsAccountVerified: u.IsAccountVerified,
		Role:              u.Role,
	}
}

// AuthorSummary is the slice of a user embedded into post and comment views.
type AuthorSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
