package booking

import "time"

// PropertyStatus is the publication state of a property listing.
type PropertyStatus string

const (
	PropertyDraft     PropertyStatus = "DRAFT"
	PropertyPublished PropertyStatus = "PUBLISHED"
	PropertyInactive  PropertyStatus = "INACTIVE"
)

// RoomType classifies a bookable room.
type RoomType string

const (
	RoomSingle RoomType = "SINGLE"
	RoomDouble RoomType = "DOUBLE"
	RoomSuite  RoomType = "SUITE"
)

// Owner is the embedded owner summary on a property.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Amenity is a service attached to a property or room. Description comes
// from the shared catalog; CustomDescription is the listing-specific override
// (e.g. "1Gb fiber").
type Amenity struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Icon              string  `json:"icon,omitempty"`
	Description       *string `json:"description,omitempty"`
	CustomDescription *string `json:"custom_description,omitempty"`
}

// AmenityLink attaches an existing catalog amenity to a listing.
type AmenityLink struct {
	ID                string `json:"id"`
	CustomDescription string `json:"custom_description,omitempty"`
}

// NewAmenityInput creates a catalog amenity inline.
type NewAmenityInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// Media is an uploaded image or video.
type Media struct {
	ID          string  `json:"id"`
	FileName    string  `json:"file_name"`
	FileType    string  `json:"file_type"`
	StoragePath string  `json:"storage_path"`
	Description *string `json:"description,omitempty"`
}

// MediaUpload is the payload for uploading a file, linked to either a
// property or a room. Base64Data carries the raw file content without the
// data-URL header.
type MediaUpload struct {
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
	Base64Data  string `json:"base64Data"`
	Description string `json:"description,omitempty"`
	PropertyID  string `json:"property_id,omitempty"`
	RoomID      string `json:"room_id,omitempty"`
}

// Room is a bookable room within a property.
type Room struct {
	ID          string    `json:"id"`
	Type        RoomType  `json:"type"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
	Amenities   []Amenity `json:"amenities"`
	Media       []Media   `json:"media"`
}

// RoomInput creates or updates a room.
type RoomInput struct {
	Type         RoomType          `json:"type"`
	Description  string            `json:"description,omitempty"`
	Price        float64           `json:"price"`
	Capacity     int               `json:"capacity"`
	Amenities    []AmenityLink     `json:"amenities"`
	NewAmenities []NewAmenityInput `json:"new_amenities,omitempty"`
	MediaIDs     []string          `json:"media_ids,omitempty"`
}

// Property is the full listing as rendered by the UI.
type Property struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	Country     string         `json:"country"`
	Description *string        `json:"description,omitempty"`
	Status      PropertyStatus `json:"status"`
	Owner       Owner          `json:"owner"`
	Amenities   []Amenity      `json:"amenities"`
	Rooms       []Room         `json:"rooms"`
	Media       []Media        `json:"media"`
}

// PropertyInput creates or updates a property.
type PropertyInput struct {
	Name        string        `json:"name"`
	Address     string        `json:"address"`
	City        string        `json:"city"`
	Country     string        `json:"country"`
	Description string        `json:"description"`
	Amenities   []AmenityLink `json:"amenities"`
	MediaIDs    []string      `json:"media_ids,omitempty"`
}

// SearchCriteria filters the public property search.
type SearchCriteria struct {
	Location string
	MinPrice float64
	MaxPrice float64
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}
