package transmission

import "time"

// StartRequest carries the parameters for one transmission job. All fields
// are required and validated by the caller before the request is issued.
type StartRequest struct {
	DstIP   string `json:"dstIp"`
	DstPort int    `json:"dstPort"`
	SrcPort int    `json:"srcPort"`
	SiteID  string `json:"siteId"`
}

// RunStatus is the backend's view of the current job. The backend owns this
// record; the client only ever holds a cached, possibly stale copy. Every
// field except Running is null until a job has run at least once.
type RunStatus struct {
	Running   bool       `json:"running"`
	DstIP     *string    `json:"dstIp"`
	DstPort   *int       `json:"dstPort"`
	SrcPort   *int       `json:"srcPort"`
	SiteID    *string    `json:"siteId"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	LastSentA *time.Time `json:"lastSentA,omitempty"`
	LastSentB *time.Time `json:"lastSentB,omitempty"`
}

// StartResponse is the body of a successful start call. The contract only
// requires a 2xx status; the body is informational.
type StartResponse struct {
	Started   bool      `json:"started"`
	StartedAt time.Time `json:"startedAt"`
}
