// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package character

// Status values reported by the API. Note the lower case unknown.
const (
	StatusAlive   = "Alive"
	StatusDead    = "Dead"
	StatusUnknown = "unknown"
)

// Location is a named place reference, used for both origin and last known
// location.
type Location struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is a single record from the character endpoint.
type Character struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Species  string   `json:"species"`
	Type     string   `json:"type"`
	Gender   string   `json:"gender"`
	Origin   Location `json:"origin"`
	Location Location `json:"location"`
	Image    string   `json:"image"`
	Episode  []string `json:"episode"`
	URL      string   `json:"url"`
	Created  string   `json:"created"`
}

// Info is the paging envelope returned with every list response.
type Info struct {
	Count int    `json:"count"`
	Pages int    `json:"pages"`
	Next  string `json:"next"`
	Prev  string `json:"prev"`
}

// Page is one decoded list response. Raw holds the undecoded results array so
// the output pipeline can slice it without a round trip through the structs.
type Page struct {
	Info    Info        `json:"info"`
	Results []Character `json:"results"`
	Raw     []byte      `json:"-"`
}
