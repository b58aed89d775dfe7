package model

import "time"

// Alert is an advisory card on the dashboard (disease sightings, pest
// warnings, weather notices).
type Alert struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Detail      string    `json:"detail" db:"detail"`
	Region      string    `json:"region" db:"region"`
	ActionLabel string    `json:"action_label" db:"action_label"`
	ReceivedAt  time.Time `json:"received_at" db:"received_at"`
}

// BuiltinAlerts returns the fallback advisory set shown when no
// bulletin mailbox is configured or the last poll failed.
func BuiltinAlerts() []Alert {
	return []Alert{
		{
			ID:          "builtin-leaf-spot",
			Title:       "Yellow Leaf Spot Alert",
			Detail:      "Moist weather may spread fungal infections.",
			Region:      "Mysore, Mandya",
			ActionLabel: "See more details",
		},
		{
			ID:          "builtin-aphid",
			Title:       "Aphid Insect Warning",
			Detail:      "Nearby farmers reported aphids on brinjal crops. Act fast in next 2 days.",
			Region:      "Nearby farms",
			ActionLabel: "Get remedy steps",
		},
		{
			ID:          "builtin-rain",
			Title:       "Rain Expected Tomorrow Afternoon",
			Detail:      "Delay urea spraying or pesticide use. Protect stored grains.",
			Region:      "Hassan",
			ActionLabel: "Weather tips",
		},
	}
}
