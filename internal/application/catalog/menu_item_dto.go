package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Accepted price range for menu item requests
var (
	MinPrice = decimal.RequireFromString("0.01")
	MaxPrice = decimal.RequireFromString("9999.99")
)

// MenuItemRequest is the body of a menu item create or update
type MenuItemRequest struct {
	Name              string                     `json:"name" binding:"required,max=255"`
	Image             string                     `json:"image" binding:"required,max=1024"`
	Description       string                     `json:"description" binding:"required,max=2000"`
	Price             decimal.Decimal            `json:"price"`
	InStock           *int                       `json:"inStock" binding:"required,min=0,max=1000"`
	AdditionalDetails []AdditionalDetailRequest `json:"additionalDetails" binding:"max=5,dive"`
}

// AdditionalDetailRequest describes one attribute; ID is set when updating an existing one
type AdditionalDetailRequest struct {
	ID    *uuid.UUID `json:"id"`
	Name  string     `json:"name" binding:"required,max=100"`
	Value string     `json:"value" binding:"required,max=255"`
}

func (r MenuItemRequest) stock() int {
	if r.InStock == nil {
		return 0
	}
	return *r.InStock
}

func (r MenuItemRequest) attributeSpecs() []catalog.AttributeSpec {
	specs := make([]catalog.AttributeSpec, 0, len(r.AdditionalDetails))
	for _, d := range r.AdditionalDetails {
		specs = append(specs, catalog.AttributeSpec{ID: d.ID, Name: d.Name, Value: d.Value})
	}
	return specs
}

// ImageUploadRequest asks for a presigned URL to upload a menu image
type ImageUploadRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

// ImageUploadResponse carries the presigned URL and the key to send back as the menu item image
type ImageUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ImageKey  string    `json:"imageKey"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MenuItemResponse represents a menu item in API responses
type MenuItemResponse struct {
	ID                uuid.UUID                  `json:"id"`
	Name              string                     `json:"name"`
	Image             string                     `json:"image"`
	Description       string                     `json:"description"`
	Price             decimal.Decimal            `json:"price"`
	InStock           int                        `json:"inStock"`
	Enabled           bool                       `json:"enabled"`
	AdditionalDetails []AdditionalDetailResponse `json:"additionalDetails"`
	CreatedAt         time.Time                  `json:"createdAt"`
	UpdatedAt         time.Time                  `json:"updatedAt"`
	Version           int                        `json:"version"`
}

// AdditionalDetailResponse represents an attribute in API responses
type AdditionalDetailResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Value string    `json:"value"`
}

// DeleteOutcome tells whether a menu item was removed or only disabled
type DeleteOutcome string

const (
	DeleteOutcomeDeleted  DeleteOutcome = "deleted"
	DeleteOutcomeDisabled DeleteOutcome = "disabled"
)

// DeleteMenuItemResponse reports the result of a delete request
type DeleteMenuItemResponse struct {
	ID      uuid.UUID     `json:"id"`
	Outcome DeleteOutcome `json:"outcome"`
}

// ToMenuItemResponse converts a domain MenuItem to a response DTO
func ToMenuItemResponse(m *catalog.MenuItem) MenuItemResponse {
	details := make([]AdditionalDetailResponse, 0, len(m.Attributes))
	for _, a := range m.Attributes {
		details = append(details, AdditionalDetailResponse{ID: a.ID, Name: a.Name, Value: a.Value})
	}
	return MenuItemResponse{
		ID:                m.ID,
		Name:              m.Name,
		Image:             m.Image,
		Description:       m.Description,
		Price:             m.Price,
		InStock:           m.Stock,
		Enabled:           m.Enabled,
		AdditionalDetails: details,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Version:           m.Version,
	}
}

// ToMenuItemResponses converts a slice of domain MenuItems to response DTOs
func ToMenuItemResponses(items []catalog.MenuItem) []MenuItemResponse {
	responses := make([]MenuItemResponse, len(items))
	for i := range items {
		responses[i] = ToMenuItemResponse(&items[i])
	}
	return responses
}
