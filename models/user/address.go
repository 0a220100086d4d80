package user

// Address is embedded into the users table with an address_ prefix.
type Address struct {
	Street  string `gorm:"size:255" json:"street,omitempty"`
	City    string `gorm:"size:100" json:"city,omitempty"`
	State   string `gorm:"size:100" json:"state,omitempty"`
	Pincode string `gorm:"size:10" json:"pincode,omitempty"`
}
