package model

import "time"

// CropQuote is a single entry on the scrolling market ticker.
type CropQuote struct {
	Name      string    `json:"name" db:"name"`
	Price     string    `json:"price" db:"price"`
	Image     string    `json:"image" db:"image"`
	Note      string    `json:"note" db:"note"`
	FetchedAt time.Time `json:"fetched_at" db:"fetched_at"`
}

// SeedQuotes returns the built-in quote set used before the first
// successful market fetch and as the offline fallback.
func SeedQuotes() []CropQuote {
	return []CropQuote{
		{Name: "Tomato", Price: "₹25/kg", Image: "tomato.jpeg"},
		{Name: "Wheat", Price: "₹20/kg", Image: "wheat.jpeg"},
		{Name: "Rice", Price: "₹18/kg", Image: "rice.jpeg"},
		{Name: "Cotton", Price: "₹30/kg", Image: "cotton.jpeg"},
		{Name: "Maize", Price: "₹22/kg", Image: "maize.jpeg"},
	}
}
