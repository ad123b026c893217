package api

import (
	"context"
	"net/http"
	"net/url"

	booking "github.com/roomhub/booking-go"
)

// PropertiesService manages property listings. All operations require an
// authenticated owner session.
type PropertiesService struct {
	client *Client
}

// Create registers a new property in DRAFT status.
func (s *PropertiesService) Create(ctx context.Context, input booking.PropertyInput) (*booking.Property, error) {
	var out booking.Property
	if err := s.client.do(ctx, http.MethodPost, "/api/properties", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Mine lists the properties owned by the current user, in every status.
func (s *PropertiesService) Mine(ctx context.Context) ([]booking.Property, error) {
	var out []booking.Property
	if err := s.client.do(ctx, http.MethodGet, "/api/properties/my-properties", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single property with its rooms, amenities and media.
func (s *PropertiesService) Get(ctx context.Context, id string) (*booking.Property, error) {
	var out booking.Property
	if err := s.client.do(ctx, http.MethodGet, "/api/properties/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the property's editable fields.
func (s *PropertiesService) Update(ctx context.Context, id string, input booking.PropertyInput) (*booking.Property, error) {
	var out booking.Property
	if err := s.client.do(ctx, http.MethodPut, "/api/properties/"+url.PathEscape(id), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a property and everything attached to it.
func (s *PropertiesService) Delete(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/api/properties/"+url.PathEscape(id), nil, nil)
}

// Publish makes the property visible in public search.
func (s *PropertiesService) Publish(ctx context.Context, id string) (*booking.Property, error) {
	return s.transition(ctx, id, "publish")
}

// Unpublish takes the property out of public search, back to DRAFT.
func (s *PropertiesService) Unpublish(ctx context.Context, id string) (*booking.Property, error) {
	return s.transition(ctx, id, "unpublish")
}

// Archive marks the property INACTIVE, hiding it without deleting data.
func (s *PropertiesService) Archive(ctx context.Context, id string) (*booking.Property, error) {
	return s.transition(ctx, id, "archive")
}

func (s *PropertiesService) transition(ctx context.Context, id, action string) (*booking.Property, error) {
	var out booking.Property
	path := "/api/properties/" + url.PathEscape(id) + "/" + action
	if err := s.client.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rooms lists the rooms of a property.
func (s *PropertiesService) Rooms(ctx context.Context, propertyID string) ([]booking.Room, error) {
	var out []booking.Room
	path := "/api/properties/" + url.PathEscape(propertyID) + "/rooms"
	if err := s.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddRoom creates a room under a property.
func (s *PropertiesService) AddRoom(ctx context.Context, propertyID string, input booking.RoomInput) (*booking.Room, error) {
	var out booking.Room
	path := "/api/properties/" + url.PathEscape(propertyID) + "/rooms"
	if err := s.client.do(ctx, http.MethodPost, path, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AmenityCatalog lists the catalog amenities attachable to properties.
func (s *PropertiesService) AmenityCatalog(ctx context.Context) ([]booking.Amenity, error) {
	var out []booking.Amenity
	if err := s.client.do(ctx, http.MethodGet, "/api/amenities/property", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
