// Package flights is the client for the third-party flight aggregator. It
// authenticates with client credentials, keeps the bearer token in an
// injected cache, and reshapes search responses into models.Flight.
package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nudem-backend/internal/config"
	"nudem-backend/internal/models"
)

type Client struct {
	cfg    config.FlightsConfig
	client *http.Client
	cache  TokenCache
}

func NewClient(cfg config.FlightsConfig, cache TokenCache) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// getValidToken returns a cached aggregator token, requesting a fresh one
// when the cache is empty or the token is within the expiry buffer.
func (c *Client) getValidToken(ctx context.Context) (string, error) {
	cached, err := c.cache.GetToken(ctx)
	if err != nil {
		return "", err
	}
	if cached != nil {
		return cached.Token, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to get token, status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	if err := c.cache.SetToken(ctx, tokenResp.AccessToken, tokenResp.ExpiresIn); err != nil {
		return "", fmt.Errorf("failed to cache token: %w", err)
	}
	return tokenResp.AccessToken, nil
}

// aggregator response shapes
type searchResponse struct {
	Data []offer `json:"data"`
}

type offer struct {
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	NumberOfBookableSeats int         `json:"numberOfBookableSeats"`
	Itineraries           []itinerary `json:"itineraries"`
	CabinClass            string      `json:"cabinClass"`
	Refundable            bool        `json:"refundable"`
}

type itinerary struct {
	Duration string `json:"duration"`
	Segments []struct {
		Departure struct {
			IataCode string `json:"iataCode"`
			At       string `json:"at"`
		} `json:"departure"`
		Arrival struct {
			IataCode string `json:"iataCode"`
			At       string `json:"at"`
		} `json:"arrival"`
		CarrierCode string `json:"carrierCode"`
		Number      string `json:"number"`
		Duration    string `json:"duration"`
	} `json:"segments"`
}

// Search queries the aggregator for one-way offers on the given route and
// date and reshapes them into the API's flight representation.
func (c *Client) Search(ctx context.Context, departure, arrival, date string) ([]models.Flight, error) {
	token, err := c.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregator URL: %w", err)
	}
	q := u.Query()
	q.Set("originLocationCode", departure)
	q.Set("destinationLocationCode", arrival)
	q.Set("departureDate", date)
	q.Set("adults", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aggregator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("aggregator search failed, status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return reshape(searchResp), nil
}

func reshape(resp searchResponse) []models.Flight {
	flights := make([]models.Flight, 0, len(resp.Data))
	for _, o := range resp.Data {
		if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
			continue
		}
		it := o.Itineraries[0]
		first := it.Segments[0]
		last := it.Segments[len(it.Segments)-1]

		price, _ := strconv.ParseFloat(o.Price.Total, 64)
		currency := o.Price.Currency
		if currency == "" {
			currency = "EUR"
		}

		f := models.Flight{
			FlightNumber:   first.CarrierCode + first.Number,
			Departure:      first.Departure.IataCode,
			Arrival:        last.Arrival.IataCode,
			DepartureTime:  first.Departure.At,
			ArrivalTime:    last.Arrival.At,
			Duration:       formatDuration(it.Duration),
			Price:          price,
			Currency:       currency,
			Airline:        first.CarrierCode,
			Stops:          len(it.Segments) - 1,
			Direct:         len(it.Segments) == 1,
			AvailableSeats: o.NumberOfBookableSeats,
			CabinClass:     defaultCabin(o.CabinClass),
			Refundable:     o.Refundable,
		}
		for i, s := range it.Segments {
			if i > 0 {
				f.StopLocations = append(f.StopLocations, s.Departure.IataCode)
			}
			f.Segments = append(f.Segments, models.FlightSegment{
				DepartureAirport: s.Departure.IataCode,
				ArrivalAirport:   s.Arrival.IataCode,
				DepartureTime:    s.Departure.At,
				ArrivalTime:      s.Arrival.At,
				Duration:         formatDuration(s.Duration),
				CarrierCode:      s.CarrierCode,
				FlightNumber:     s.CarrierCode + s.Number,
			})
		}
		flights = append(flights, f)
	}
	return flights
}

// formatDuration turns the aggregator's ISO-8601 duration (PT8H30M) into the
// display form the frontend expects (8h 30m).
func formatDuration(iso string) string {
	s := strings.TrimPrefix(iso, "PT")
	if s == iso {
		return iso
	}
	s = strings.ToLower(s)
	s = strings.Replace(s, "h", "h ", 1)
	return strings.TrimSpace(s)
}

func defaultCabin(cabin string) string {
	if cabin == "" {
		return "ECONOMY"
	}
	return cabin
}
