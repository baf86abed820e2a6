package payments

import (
	"github.com/farellandr/influencehub/internal/models"
	"github.com/google/uuid"
)

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID   uuid.UUID
	Role string
}

func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// Page selects a window of a listing. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}
