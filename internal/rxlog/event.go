// Package rxlog holds the canonical form of responses received by the
// transmitter and the bounded in-memory log that collects them.
package rxlog

import "time"

// Category classifies a received response packet.
type Category string

const (
	CategoryA       Category = "A"
	CategoryB       Category = "B"
	CategoryB2      Category = "B2"
	CategoryUnknown Category = "UNKNOWN"

	// CategoryAll is a filter sentinel meaning "no filtering". It is never
	// assigned to an event.
	CategoryAll Category = "ALL"
)

// ParseCategory maps a raw type value onto a Category. The mapping is closed:
// anything other than an exact "A", "B" or "B2" is UNKNOWN. No case folding,
// no prefix matching.
func ParseCategory(raw string) Category {
	switch raw {
	case "A":
		return CategoryA
	case "B":
		return CategoryB
	case "B2":
		return CategoryB2
	default:
		return CategoryUnknown
	}
}

// ReceivedEvent is the canonical form of one response observed by the
// transmitter. ReceivedAt, SourceIP and SourcePort are always set once an
// event has been admitted; ByteCount and PayloadHex are optional on the wire
// and may be nil / empty here.
type ReceivedEvent struct {
	ReceivedAt time.Time `json:"receivedAt"`
	SourceIP   string    `json:"sourceIp"`
	SourcePort int       `json:"sourcePort"`
	ByteCount  *int      `json:"byteCount,omitempty"`
	PayloadHex string    `json:"payloadHex,omitempty"`
	Category   Category  `json:"category"`
}

// Counts aggregates the log's composition by category. It always reflects the
// full log, never a filtered view of it.
type Counts struct {
	A       int `json:"a"`
	B       int `json:"b"`
	B2      int `json:"b2"`
	Unknown int `json:"unknown"`
	Total   int `json:"total"`
}
