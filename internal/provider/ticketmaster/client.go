// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

/*
Package ticketmaster implements the ticketing/event catalog client.

It speaks the Discovery v2 API: attraction lookup by native ID and paginated
event listings per attraction. All transport concerns (throttling, retry,
error classification) are delegated to the shared [provider.Fetcher].
*/
package ticketmaster

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/minhlq/setwave/internal/provider"
)

const defaultBaseURL = "https://app.ticketmaster.com/discovery/v2"

// eventsPageSize is the page size requested from the events endpoint.
const eventsPageSize = 50

// Client is the Ticketmaster Discovery API client.
type Client struct {
	fetcher *provider.Fetcher
	apiKey  string
	baseURL string
}

// NewClient constructs a Ticketmaster client.
func NewClient(fetcher *provider.Fetcher, apiKey string) *Client {
	return NewClientWithBaseURL(fetcher, apiKey, defaultBaseURL)
}

// NewClientWithBaseURL constructs a client against a custom base URL (tests).
func NewClientWithBaseURL(fetcher *provider.Fetcher, apiKey, baseURL string) *Client {
	return &Client{fetcher: fetcher, apiKey: apiKey, baseURL: baseURL}
}

// # Payload Shapes

// Attraction is the artist-side record of the ticketing catalog.
type Attraction struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Classifications []struct {
		Genre struct {
			Name string `json:"name"`
		} `json:"genre"`
	} `json:"classifications"`
}

// Event is one show as the ticketing catalog reports it.
type Event struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			DateTime  string `json:"dateTime"`
		} `json:"start"`
		Status struct {
			Code string `json:"code"`
		} `json:"status"`
	} `json:"dates"`
	Embedded struct {
		Venues []Venue `json:"venues"`
	} `json:"_embedded"`
}

// Venue is the nested venue block of an event.
type Venue struct {
	Name string `json:"name"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	Country struct {
		CountryCode string `json:"countryCode"`
	} `json:"country"`
}

// eventsResponse is the paged envelope of the events endpoint.
type eventsResponse struct {
	Embedded struct {
		Events []Event `json:"events"`
	} `json:"_embedded"`
	Page struct {
		Size         int `json:"size"`
		TotalPages   int `json:"totalPages"`
		TotalElement int `json:"totalElements"`
		Number       int `json:"number"`
	} `json:"page"`
}

// # Operations

// Attraction fetches one attraction by its native ID.
func (client *Client) Attraction(context context.Context, attractionID string) (*Attraction, error) {
	endpoint := fmt.Sprintf("%s/attractions/%s.json?apikey=%s",
		client.baseURL, url.PathEscape(attractionID), url.QueryEscape(client.apiKey))

	attraction := &Attraction{}
	if err := client.fetcher.GetJSON(context, provider.NameTicketmaster, "attraction_lookup", endpoint, nil, attraction); err != nil {
		return nil, err
	}

	return attraction, nil
}

// EventsPage fetches one page (1-indexed) of upcoming events for an
// attraction and reports the provider's total page count.
//
// The Discovery API numbers pages from zero; the offset is translated here
// so callers can use it directly as a [provider.PageFunc].
func (client *Client) EventsPage(context context.Context, attractionID string, page int) ([]Event, int, error) {
	params := url.Values{
		"apikey":       {client.apiKey},
		"attractionId": {attractionID},
		"size":         {strconv.Itoa(eventsPageSize)},
		"page":         {strconv.Itoa(page - 1)},
		"sort":         {"date,asc"},
	}
	endpoint := client.baseURL + "/events.json?" + params.Encode()

	response := &eventsResponse{}
	if err := client.fetcher.GetJSON(context, provider.NameTicketmaster, "events_page", endpoint, nil, response); err != nil {
		return nil, 0, err
	}

	return response.Embedded.Events, response.Page.TotalPages, nil
}

// PrimaryGenre returns the first classified genre name, or empty.
func (attraction *Attraction) PrimaryGenre() string {
	for _, classification := range attraction.Classifications {
		if classification.Genre.Name != "" {
			return classification.Genre.Name
		}
	}
	return ""
}

// ImageURL returns the first image URL, or empty.
func (attraction *Attraction) ImageURL() string {
	if len(attraction.Images) == 0 {
		return ""
	}
	return attraction.Images[0].URL
}
