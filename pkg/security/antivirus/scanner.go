package antivirus

import (
	"context"
	"io"
)

// ScanResult is the verdict for one scanned file.
type ScanResult struct {
	Infected    bool   // malware found, or the scan could not complete
	ThreatName  string // empty when clean
	ScannerName string
	Error       error
}

// Scanner checks uploaded content for malware. A failed scan reports
// Infected with a non-nil Error.
type Scanner interface {
	Scan(ctx context.Context, filename string, data io.Reader) ScanResult
	Name() string
	Available(ctx context.Context) bool
}

// NoOpScanner accepts everything. Used when no clamd address is configured.
type NoOpScanner struct{}

var _ Scanner = NoOpScanner{}

func (NoOpScanner) Scan(context.Context, string, io.Reader) ScanResult {
	return ScanResult{ScannerName: "noop"}
}

func (NoOpScanner) Name() string { return "noop" }

func (NoOpScanner) Available(context.Context) bool { return true }
