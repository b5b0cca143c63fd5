// Package transport defines the request and response shapes for the
// properties API.
package transport

import (
	"time"

	"github.com/google/uuid"

	"terraflow_backend/internal/properties/repository"
)

// CreatePropertyRequest is the payload for creating a listing.
type CreatePropertyRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Address     string `json:"address" binding:"required,max=300"`
	City        string `json:"city" binding:"required,max=120"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	Bedrooms    int    `json:"bedrooms" binding:"gte=0,lte=50"`
	Bathrooms   int    `json:"bathrooms" binding:"gte=0,lte=50"`
	AreaSqm     int    `json:"areaSqm" binding:"gte=0"`
}

// UpdatePropertyRequest is a partial listing update.
type UpdatePropertyRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Address     *string `json:"address" binding:"omitempty,max=300"`
	City        *string `json:"city" binding:"omitempty,max=120"`
	Price       *int64  `json:"price" binding:"omitempty,gt=0"`
	Bedrooms    *int    `json:"bedrooms" binding:"omitempty,gte=0,lte=50"`
	Bathrooms   *int    `json:"bathrooms" binding:"omitempty,gte=0,lte=50"`
	AreaSqm     *int    `json:"areaSqm" binding:"omitempty,gte=0"`
	Status      *string `json:"status"`
}

// EnquiryRequest is a public visitor's interest in a listing.
type EnquiryRequest struct {
	Name    string  `json:"name" binding:"required,max=200"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=32"`
	Message string  `json:"message" binding:"max=2000"`
}

// PropertyResponse is the owner-facing representation of a listing.
type PropertyResponse struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Price          int64     `json:"price"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      int       `json:"bathrooms"`
	AreaSqm        int       `json:"areaSqm"`
	Status         string    `json:"status"`
	Views          int64     `json:"views"`
	LeadsGenerated int64     `json:"leadsGenerated"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PublicPropertyResponse is the public site's view of a listing. It omits
// traffic counters and ownership details.
type PublicPropertyResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Price       int64     `json:"price"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	AreaSqm     int       `json:"areaSqm"`
}

// MediaResponse is one stored photo or document, with a short-lived
// download URL.
type MediaResponse struct {
	ID          uuid.UUID  `json:"id"`
	ContentType string     `json:"contentType"`
	SizeBytes   int64      `json:"sizeBytes"`
	CapturedAt  *time.Time `json:"capturedAt,omitempty"`
	DownloadURL string     `json:"downloadUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// EnquiryResponse acknowledges a public enquiry.
type EnquiryResponse struct {
	LeadID uuid.UUID `json:"leadId"`
}

// NewPropertyResponse maps a stored listing to its owner-facing shape.
func NewPropertyResponse(p repository.Property) PropertyResponse {
	return PropertyResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Address:        p.Address,
		City:           p.City,
		Price:          p.Price,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		AreaSqm:        p.AreaSqm,
		Status:         p.Status,
		Views:          p.Views,
		LeadsGenerated: p.LeadsGenerated,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// NewPropertyResponses maps a slice of listings, preserving order.
func NewPropertyResponses(properties []repository.Property) []PropertyResponse {
	out := make([]PropertyResponse, len(properties))
	for i, p := range properties {
		out[i] = NewPropertyResponse(p)
	}
	return out
}

// NewPublicPropertyResponse maps a listing to its public shape.
func NewPublicPropertyResponse(p repository.Property) PublicPropertyResponse {
	return PublicPropertyResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		City:        p.City,
		Price:       p.Price,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		AreaSqm:     p.AreaSqm,
	}
}
