// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

/*
Package spotify implements the music streaming catalog client.

It covers artist lookup, artist search, and top tracks. The client-credentials
token dance lives in token.go; everything else rides the shared
[provider.Fetcher].
*/
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/minhlq/setwave/internal/provider"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// Client is the Spotify Web API client.
type Client struct {
	fetcher *provider.Fetcher
	tokens  *tokenSource
	baseURL string
}

// NewClient constructs a Spotify client using the client-credentials flow.
func NewClient(fetcher *provider.Fetcher, clientID, clientSecret string) *Client {
	return &Client{
		fetcher: fetcher,
		tokens:  newTokenSource(clientID, clientSecret, defaultTokenURL),
		baseURL: defaultBaseURL,
	}
}

// NewClientWithURLs constructs a client against custom endpoints (tests).
func NewClientWithURLs(fetcher *provider.Fetcher, clientID, clientSecret, baseURL, tokenURL string) *Client {
	return &Client{
		fetcher: fetcher,
		tokens:  newTokenSource(clientID, clientSecret, tokenURL),
		baseURL: baseURL,
	}
}

// # Payload Shapes

// Artist is the streaming catalog's artist record.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Images     []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// Track is one song as the streaming catalog reports it.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
	Popularity int    `json:"popularity"`
	Album      struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"album"`
}

type searchResponse struct {
	Artists struct {
		Items []Artist `json:"items"`
	} `json:"artists"`
}

type topTracksResponse struct {
	Tracks []Track `json:"tracks"`
}

// # Operations

// Artist fetches one artist by its native ID.
func (client *Client) Artist(context context.Context, artistID string) (*Artist, error) {
	header, err := client.authHeader(context)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/artists/%s", client.baseURL, url.PathEscape(artistID))

	artist := &Artist{}
	if err := client.fetcher.GetJSON(context, provider.NameSpotify, "artist_lookup", endpoint, header, artist); err != nil {
		return nil, err
	}

	return artist, nil
}

// SearchArtist returns the catalog's best artist match for a name, or a
// provider 404 error when nothing matches.
func (client *Client) SearchArtist(context context.Context, name string) (*Artist, error) {
	header, err := client.authHeader(context)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"q":     {name},
		"type":  {"artist"},
		"limit": {"5"},
	}
	endpoint := client.baseURL + "/search?" + params.Encode()

	response := &searchResponse{}
	if err := client.fetcher.GetJSON(context, provider.NameSpotify, "search_artist", endpoint, header, response); err != nil {
		return nil, err
	}

	if len(response.Artists.Items) == 0 {
		return nil, &provider.Error{
			Provider:   provider.NameSpotify,
			Op:         "search_artist",
			StatusCode: http.StatusNotFound,
			Retryable:  false,
		}
	}

	return &response.Artists.Items[0], nil
}

// TopTracks returns the artist's current top tracks.
func (client *Client) TopTracks(context context.Context, artistID string) ([]Track, error) {
	header, err := client.authHeader(context)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/artists/%s/top-tracks?market=US", client.baseURL, url.PathEscape(artistID))

	response := &topTracksResponse{}
	if err := client.fetcher.GetJSON(context, provider.NameSpotify, "top_tracks", endpoint, header, response); err != nil {
		return nil, err
	}

	return response.Tracks, nil
}

// authHeader resolves a bearer token, refreshing it when expired.
func (client *Client) authHeader(context context.Context) (http.Header, error) {
	token, err := client.tokens.Token(context)
	if err != nil {
		return nil, &provider.Error{Provider: provider.NameSpotify, Op: "token", Retryable: true, Cause: err}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return header, nil
}
