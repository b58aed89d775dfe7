package model

import "time"

// Literacy level constants for the profile form.
const (
	LiteracyLow    = "low"
	LiteracyMedium = "medium"
	LiteracyHigh   = "high"
)

// Device type constants.
const (
	DeviceFeaturePhone = "feature_phone"
	DeviceSmartphone   = "smartphone"
)

// Contact holds the farmer's reachable contact details.
type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Location describes where the farm is.
type Location struct {
	Village  string `json:"village"`
	District string `json:"district"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

// LanguagePreferences captures how the farmer prefers to communicate.
type LanguagePreferences struct {
	Spoken        string `json:"spoken"`
	LiteracyLevel string `json:"literacy_level"`
}

// DeviceInfo describes the device the farmer uses.
type DeviceInfo struct {
	DeviceType string `json:"device_type"`
}

// FarmingHistory summarises the farmer's experience.
type FarmingHistory struct {
	YearsOfExperience int `json:"years_of_experience"`
}

// LandInfo describes the cultivated land.
type LandInfo struct {
	LandSizeAcres float64 `json:"land_size_acres"`
}

// FarmerProfile is the multi-section profile edited through the
// profile form and synced to the profile backend.
type FarmerProfile struct {
	Name                string              `json:"name"`
	Age                 int                 `json:"age"`
	Gender              string              `json:"gender"`
	Contact             Contact             `json:"contact"`
	Location            Location            `json:"location"`
	LanguagePreferences LanguagePreferences `json:"language_preferences"`
	DeviceInfo          DeviceInfo          `json:"device_info"`
	Crops               []string            `json:"crops"`
	FarmingHistory      FarmingHistory      `json:"farming_history"`
	LandInfo            LandInfo            `json:"land_info"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
