package api

import (
	"context"
	"net/http"
	"net/url"

	booking "github.com/roomhub/booking-go"
)

// RoomsService manages rooms independently of their parent property.
type RoomsService struct {
	client *Client
}

// Get fetches a single room with its amenities and media.
func (s *RoomsService) Get(ctx context.Context, id string) (*booking.Room, error) {
	var out booking.Room
	if err := s.client.do(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the room's editable fields.
func (s *RoomsService) Update(ctx context.Context, id string, input booking.RoomInput) (*booking.Room, error) {
	var out booking.Room
	if err := s.client.do(ctx, http.MethodPut, "/api/rooms/"+url.PathEscape(id), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a room.
func (s *RoomsService) Delete(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/api/rooms/"+url.PathEscape(id), nil, nil)
}

// AddAmenity attaches a catalog amenity to a room, optionally with a
// listing-specific description.
func (s *RoomsService) AddAmenity(ctx context.Context, roomID string, link booking.AmenityLink) (*booking.Room, error) {
	var out booking.Room
	path := "/api/rooms/" + url.PathEscape(roomID) + "/amenities"
	if err := s.client.do(ctx, http.MethodPost, path, link, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveAmenity detaches an amenity from a room. The catalog entry survives.
func (s *RoomsService) RemoveAmenity(ctx context.Context, roomID, amenityID string) error {
	path := "/api/rooms/" + url.PathEscape(roomID) + "/amenities/" + url.PathEscape(amenityID)
	return s.client.do(ctx, http.MethodDelete, path, nil, nil)
}

// AmenityCatalog lists the catalog amenities attachable to rooms.
func (s *RoomsService) AmenityCatalog(ctx context.Context) ([]booking.Amenity, error) {
	var out []booking.Amenity
	if err := s.client.do(ctx, http.MethodGet, "/api/amenities/room", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
