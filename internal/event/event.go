package event

import "time"

// DateLayout is the calendar-date format events are submitted and stored in.
const DateLayout = "2006-01-02"

// DefaultCategory is assigned to every user-submitted event.
const DefaultCategory = "Community"

type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Time      string    `json:"time,omitempty"`
	Location  string    `json:"location,omitempty"`
	Details   string    `json:"details,omitempty"`
	Website   string    `json:"website,omitempty"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type AddEventRequest struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
	Details  string `json:"details"`
	Website  string `json:"website"`
}
