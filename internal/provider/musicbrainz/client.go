// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

/*
Package musicbrainz implements the canonical music-identity registry client.

The registry is only ever consulted for identity enrichment: a failed or slow
lookup degrades matching quality but must never fail an ingestion run. The
strict one-request-per-second budget is enforced by the shared limiter set.
*/
package musicbrainz

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/minhlq/setwave/internal/provider"
)

const userAgent = "SetWave/0.1 (https://setwave.app)"

// Client is the MusicBrainz WS/2 client.
type Client struct {
	fetcher *provider.Fetcher
	baseURL string
}

// NewClient constructs a MusicBrainz client against the given base URL
// (configurable so deployments can point at a mirror).
func NewClient(fetcher *provider.Fetcher, baseURL string) *Client {
	return &Client{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// # Payload Shapes

// ArtistMatch is one search hit with the registry's own 0-100 match score.
type ArtistMatch struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SortName       string `json:"sort-name"`
	Score          int    `json:"score"`
	Disambiguation string `json:"disambiguation"`
	Country        string `json:"country"`
}

type searchResponse struct {
	Artists []ArtistMatch `json:"artists"`
}

// # Operations

// SearchArtists queries the registry for artists matching the given name,
// ordered by the registry's own relevance score (best first).
func (client *Client) SearchArtists(context context.Context, name string) ([]ArtistMatch, error) {
	params := url.Values{
		"query": {fmt.Sprintf("artist:%q", name)},
		"fmt":   {"json"},
		"limit": {"10"},
	}
	endpoint := client.baseURL + "/artist?" + params.Encode()

	header := http.Header{}
	header.Set("User-Agent", userAgent)

	response := &searchResponse{}
	if err := client.fetcher.GetJSON(context, provider.NameMusicBrainz, "search_artists", endpoint, header, response); err != nil {
		return nil, err
	}

	return response.Artists, nil
}
