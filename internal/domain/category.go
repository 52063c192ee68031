package domain

import "encoding/json"

// Category is a listing root discovered on the seed page
type Category struct {
	Code     string   `json:"code"`     // parentCategoryCode ("classify")
	Segments []string `json:"segments"` // display path, e.g. ["men", "shoes"]
	URL      string   `json:"url"`      // canonical category page
}

// TrailEntry is one breadcrumb. The root entry names the category, every
// later entry records a listing page number.
type TrailEntry struct {
	Segments []string `json:"segments,omitempty"`
	URL      string   `json:"url,omitempty"`
	Page     int      `json:"page,omitempty"`
}

// Trail is the ordered navigation path that led to a request
type Trail []TrailEntry

// NewTrail starts a trail at the given category
func NewTrail(category Category) Trail {
	return Trail{{Segments: append([]string(nil), category.Segments...), URL: category.URL}}
}

// Copy returns an independent trail so sibling requests never share backing storage
func (t Trail) Copy() Trail {
	if t == nil {
		return nil
	}
	out := make(Trail, len(t))
	for i, entry := range t {
		out[i] = TrailEntry{
			Segments: append([]string(nil), entry.Segments...),
			URL:      entry.URL,
			Page:     entry.Page,
		}
	}
	return out
}

// WithPage returns a copy of the trail extended by a page entry
func (t Trail) WithPage(page int) Trail {
	return append(t.Copy(), TrailEntry{Page: page})
}

// Category returns the path segments of the root entry
func (t Trail) Category() []string {
	if len(t) == 0 {
		return nil
	}
	return append([]string(nil), t[0].Segments...)
}

// MarshalJSON renders the root entry as [segments, url] and page entries as [page]
func (e TrailEntry) MarshalJSON() ([]byte, error) {
	if e.Page != 0 {
		return json.Marshal([]int{e.Page})
	}
	segments := e.Segments
	if segments == nil {
		segments = []string{}
	}
	return json.Marshal([]any{segments, e.URL})
}

// UnmarshalJSON accepts both breadcrumb shapes produced by MarshalJSON
func (e *TrailEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = TrailEntry{}
	switch len(raw) {
	case 1:
		return json.Unmarshal(raw[0], &e.Page)
	case 2:
		if err := json.Unmarshal(raw[0], &e.Segments); err != nil {
			return err
		}
		return json.Unmarshal(raw[1], &e.URL)
	}
	return nil
}
