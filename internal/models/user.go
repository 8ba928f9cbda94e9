package models

// Specialty is a physician's primary medical specialty.
type Specialty string

const (
	Cardiology  Specialty = "Cardiology"
	Neurology   Specialty = "Neurology"
	Oncology    Specialty = "Oncology"
	Orthopedics Specialty = "Orthopedics"
	Pediatrics  Specialty = "Pediatrics"
	Radiology   Specialty = "Radiology"
	Pathology   Specialty = "Pathology"
)

// Specialties lists every supported specialty, in display order.
var Specialties = []Specialty{
	Cardiology, Neurology, Oncology, Orthopedics, Pediatrics, Radiology, Pathology,
}

// The two supported jurisdictions. Referring physicians are drawn from the USA,
// consulting specialists from India.
const (
	CountryUSA   = "USA"
	CountryIndia = "India"
)

const (
	AvailabilityAvailable = "Available"
	AvailabilityBusy      = "Busy"
)

// User is a physician account. Role is derived from country, not stored.
type User struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	Name            string    `json:"name" bson:"name"`
	Email           string    `json:"email" bson:"email"`
	PasswordHash    string    `json:"-" bson:"password_hash,omitempty"`
	Specialty       Specialty `json:"specialty" bson:"specialty"`
	Country         string    `json:"country" bson:"country"`
	ProfileImageURL string    `json:"profileImageUrl" bson:"profileImageUrl"`
	Experience      int       `json:"experience" bson:"experience"`
	Availability    string    `json:"availability" bson:"availability"`
	Bio             string    `json:"bio,omitempty" bson:"bio,omitempty"`
}

// IsReferrer reports whether the user may open cases (USA side).
func (u *User) IsReferrer() bool { return u.Country == CountryUSA }

// IsSpecialist reports whether the user may be consulted on cases (India side).
func (u *User) IsSpecialist() bool { return u.Country == CountryIndia }
