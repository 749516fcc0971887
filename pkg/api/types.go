// Package api holds the JSON shapes exchanged with the rental backend.
package api

type Company struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Tier    string `json:"tier"`
	Address string `json:"address"`
}

type User struct {
	ID        uint   `json:"id"`
	CompanyID *uint  `json:"company_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Tier      string `json:"tier"`
}

// UserPatch carries a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
	Tier  *string `json:"tier,omitempty"`
}

// Apply returns u with every non-nil field of p copied over.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Tier != nil {
		u.Tier = *p.Tier
	}
	return u
}

type Property struct {
	ID            uint     `json:"id"`
	CompanyID     *uint    `json:"company_id"`
	Title         string   `json:"title"`
	Address       string   `json:"address"`
	Status        string   `json:"status"`
	Amenities     []string `json:"amenities"`
	PricePerNight float64  `json:"price_per_night"`
	Description   string   `json:"description"`
}

type Booking struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"user_id"`
	PropertyID    uint    `json:"property_id"`
	PropertyTitle string  `json:"property_title"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	Guests        int     `json:"guests"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	CancelledAt   *string `json:"cancelled_at"`
}

type Favorite struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"user_id"`
	PropertyID    uint    `json:"property_id"`
	PropertyTitle string  `json:"property_title"`
	PricePerNight float64 `json:"price_per_night"`
}

type ToggleFavoriteResult struct {
	Favorited  bool `json:"favorited"`
	FavoriteID uint `json:"favorite_id,omitempty"`
	PropertyID uint `json:"property_id"`
}

type Review struct {
	ID         uint   `json:"id"`
	PropertyID uint   `json:"property_id"`
	UserID     uint   `json:"user_id"`
	UserName   string `json:"user_name"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Entity string `json:"entity,omitempty"`
}
