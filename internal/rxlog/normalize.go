package rxlog

import (
	"encoding/json"
	"time"
)

// wireEvent is the loose shape of a udp-rx payload. The backend has shipped
// two spellings for the timestamp and source address keys; both are accepted
// and the first present wins. Every field is optional at this stage.
type wireEvent struct {
	RxAt       *string `json:"rxAt"`
	ReceivedAt *string `json:"receivedAt"`
	SrcIP      *string `json:"srcIp"`
	FromIP     *string `json:"fromIp"`
	SrcPort    *int    `json:"srcPort"`
	FromPort   *int    `json:"fromPort"`
	Bytes      *int    `json:"bytes"`
	Hex        *string `json:"hex"`
	Type       *string `json:"type"`
}

// Normalize decodes one raw udp-rx payload into its canonical form. It
// returns ok=false for payloads that are not JSON objects, whose timestamp
// does not parse, or that are missing the timestamp, source IP or source port
// under every accepted key alias. Rejection is deliberately silent: one bad
// event must never interrupt the log of good ones.
func Normalize(data []byte) (ReceivedEvent, bool) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return ReceivedEvent{}, false
	}

	ts, ok := firstString(w.RxAt, w.ReceivedAt)
	if !ok {
		return ReceivedEvent{}, false
	}
	receivedAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ReceivedEvent{}, false
	}

	ip, ok := firstString(w.SrcIP, w.FromIP)
	if !ok {
		return ReceivedEvent{}, false
	}

	port, ok := firstInt(w.SrcPort, w.FromPort)
	if !ok || port == 0 {
		return ReceivedEvent{}, false
	}

	category := CategoryUnknown
	if w.Type != nil {
		category = ParseCategory(*w.Type)
	}

	ev := ReceivedEvent{
		ReceivedAt: receivedAt,
		SourceIP:   ip,
		SourcePort: port,
		ByteCount:  w.Bytes,
		Category:   category,
	}
	if w.Hex != nil {
		ev.PayloadHex = *w.Hex
	}
	return ev, true
}

// firstString returns the first non-nil, non-empty value. No merging across
// aliases: once a key is present its value wins outright.
func firstString(vals ...*string) (string, bool) {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v, true
		}
	}
	return "", false
}

func firstInt(vals ...*int) (int, bool) {
	for _, v := range vals {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}
