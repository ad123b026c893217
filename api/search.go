package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	booking "github.com/roomhub/booking-go"
)

// SearchService queries published properties. No session is required; when
// the client carries one anyway the token is attached as usual.
type SearchService struct {
	client *Client
}

// Properties searches published listings. Zero-value criteria fields are
// omitted from the query.
func (s *SearchService) Properties(ctx context.Context, criteria booking.SearchCriteria) ([]booking.Property, error) {
	path := "/api/search/"
	if q := encodeCriteria(criteria); q != "" {
		path += "?" + q
	}

	var out []booking.Property
	if err := s.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single published property for the public detail view.
func (s *SearchService) Get(ctx context.Context, id string) (*booking.Property, error) {
	var out booking.Property
	if err := s.client.do(ctx, http.MethodGet, "/api/search/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func encodeCriteria(c booking.SearchCriteria) string {
	q := url.Values{}
	if c.Location != "" {
		q.Set("location", c.Location)
	}
	if c.MinPrice > 0 {
		q.Set("min_price", strconv.FormatFloat(c.MinPrice, 'f', -1, 64))
	}
	if c.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(c.MaxPrice, 'f', -1, 64))
	}
	if !c.CheckIn.IsZero() {
		q.Set("check_in", c.CheckIn.Format(time.DateOnly))
	}
	if !c.CheckOut.IsZero() {
		q.Set("check_out", c.CheckOut.Format(time.DateOnly))
	}
	if c.Guests > 0 {
		q.Set("guests", strconv.Itoa(c.Guests))
	}
	return q.Encode()
}
