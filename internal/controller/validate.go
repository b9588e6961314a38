package controller

import (
	"strconv"
	"strings"

	"github.com/lab-ups/upsmon/internal/api/transmission"
)

// ValidationError is a client-side rejection of start parameters. It never
// reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// ValidateStart checks start parameters before any network call: dotted-quad
// IPv4 destination, ports in [1,65535], non-empty site ID.
func ValidateStart(req *transmission.StartRequest) error {
	if !validIPv4(req.DstIP) {
		return &ValidationError{Field: "dstIp", Message: "must be a dotted-quad IPv4 address"}
	}
	if !validPort(req.DstPort) {
		return &ValidationError{Field: "dstPort", Message: "must be between 1 and 65535"}
	}
	if !validPort(req.SrcPort) {
		return &ValidationError{Field: "srcPort", Message: "must be between 1 and 65535"}
	}
	if strings.TrimSpace(req.SiteID) == "" {
		return &ValidationError{Field: "siteId", Message: "must not be empty"}
	}
	return nil
}

// validIPv4 requires exactly four dot-separated decimal octets in [0,255].
func validIPv4(ip string) bool {
	parts := strings.Split(strings.TrimSpace(ip), ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}

func validPort(n int) bool {
	return n >= 1 && n <= 65535
}
