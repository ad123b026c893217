package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"

	booking "github.com/roomhub/booking-go"
)

// MediaService uploads and manages listing images and videos.
type MediaService struct {
	client *Client
}

// EncodeFile encodes raw file content for a MediaUpload payload.
func EncodeFile(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Upload stores a file and links it to the property or room named in the
// payload.
func (s *MediaService) Upload(ctx context.Context, upload booking.MediaUpload) (*booking.Media, error) {
	var out booking.Media
	if err := s.client.do(ctx, http.MethodPost, "/api/media", upload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a single media record.
func (s *MediaService) Get(ctx context.Context, id string) (*booking.Media, error) {
	var out booking.Media
	if err := s.client.do(ctx, http.MethodGet, "/api/media/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a media record and its stored file.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/api/media/"+url.PathEscape(id), nil, nil)
}

// ByProperty lists the media attached to a property.
func (s *MediaService) ByProperty(ctx context.Context, propertyID string) ([]booking.Media, error) {
	var out []booking.Media
	path := "/api/media/property/" + url.PathEscape(propertyID)
	if err := s.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByRoom lists the media attached to a room.
func (s *MediaService) ByRoom(ctx context.Context, roomID string) ([]booking.Media, error) {
	var out []booking.Media
	path := "/api/media/room/" + url.PathEscape(roomID)
	if err := s.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
