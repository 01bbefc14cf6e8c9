package contact

import "time"

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func ParseStatus(raw string) (Status, bool) {
	switch s := Status(raw); s {
	case StatusOpen, StatusClosed:
		return s, true
	}
	return "", false
}

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   *string   `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateInput struct {
	Name    string
	Email   string
	Subject *string
	Message string
}
