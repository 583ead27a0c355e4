package api

import (
	"context"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/mcapidx/pkg/catalog"
	"github.com/ssargent/mcapidx/pkg/mcap"
	"github.com/ssargent/mcapidx/pkg/scan"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ScanRequest asks the server to scan a file it can read
type ScanRequest struct {
	Path        string `json:"path"`
	Strict      *bool  `json:"strict,omitempty"`
	KeepRecords *bool  `json:"keep_records,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind           string
	Port           int
	APIKey         string       // empty disables authentication
	AllowedOrigins []string     // CORS origins
	Scan           scan.Options // defaults for POST /scans
}

// Scanner runs file scans
type Scanner interface {
	ScanFile(ctx context.Context, path string, opts scan.Options, visit scan.Visitor) (*scan.Result, error)
}

// Catalog stores scan results
type Catalog interface {
	Save(res *scan.Result) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*catalog.Entry, error)
	List() ([]*catalog.Entry, error)
	Records(id ksuid.KSUID) ([]mcap.Record, error)
	Delete(id ksuid.KSUID) error
}
