// Package dto holds the request and response bodies of the v1 API.
package dto

import (
	"time"

	"github.com/helixml/dagforge/infrastructure/api/jsonapi"
)

// ConnectionCreateRequest is the body of POST /connections.
type ConnectionCreateRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ConnectionAttributes are the public fields of a connection. The password
// is never returned.
type ConnectionAttributes struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Database  string    `json:"database"`
	Username  string    `json:"username"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectionData is a connection resource.
type ConnectionData struct {
	Type       string               `json:"type"`
	ID         string               `json:"id"`
	Attributes ConnectionAttributes `json:"attributes"`
}

// ConnectionResponse is a single connection.
type ConnectionResponse struct {
	Data ConnectionData `json:"data"`
}

// ConnectionListResponse is a page of connections.
type ConnectionListResponse struct {
	Data  []ConnectionData `json:"data"`
	Meta  *jsonapi.Meta    `json:"meta,omitempty"`
	Links *jsonapi.Links   `json:"links,omitempty"`
}

// TableListResponse lists the tables of a source connection.
type TableListResponse struct {
	Data []string `json:"data"`
}
