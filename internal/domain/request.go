package domain

import (
	"puma/crawler/internal/domain/task"
)

// Callback designates the handler a response is routed to
type Callback string

const (
	CallbackSeed    Callback = "seed"
	CallbackListing Callback = "listing"
	CallbackProduct Callback = "product"
)

const ContentTypeJSON = "application/json;charset=UTF-8"

// Meta is the request-scoped metadata propagated to the response
type Meta struct {
	CategoryCode string `json:"category_code,omitempty"`
	Trail        Trail  `json:"trail,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Request describes one HTTP call for the dispatcher
type Request struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     []byte            `json:"body,omitempty"`
	Callback Callback          `json:"callback"`
	Meta     Meta              `json:"meta"`
	// DontFilter bypasses request fingerprint filtering
	DontFilter bool `json:"dont_filter,omitempty"`
}

func (r *Request) TaskType() string {
	if r == nil {
		return ""
	}
	return string(r.Callback)
}

func (r *Request) TaskValue() ([]byte, error) {
	return task.Encode(r)
}

// Response is what the dispatcher hands back for a Request
type Response struct {
	StatusCode int
	URL        string
	Body       []byte
	Request    *Request
}

// Meta returns the metadata of the originating request
func (r *Response) Meta() Meta {
	if r.Request == nil {
		return Meta{}
	}
	return r.Request.Meta
}

// Output is one result of handling a response: either a further request or a record
type Output struct {
	Request *Request
	Product *Product
}
