package domain

// UserCacheData is the locally cached projection of the signed-in user's profile
type UserCacheData struct {
	FullName   string `json:"fullName,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	IsVerified bool   `json:"isVerified"`
}

// IsEmpty reports whether none of the content fields carry a value
func (u UserCacheData) IsEmpty() bool {
	return u.FullName == "" && u.Phone == "" && u.Email == ""
}

// UserProfile is the authoritative server-side user record
type UserProfile struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
	Role       string `json:"role,omitempty"`
}

// CacheData projects the server record onto the cached fields
func (p UserProfile) CacheData() UserCacheData {
	return UserCacheData{
		FullName:   p.FullName,
		Phone:      p.Phone,
		Email:      p.Email,
		IsVerified: p.IsVerified,
	}
}
