// Package payload builds the JSON bodies the product search API expects.
package payload

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Condition is a keyed listing filter
type Condition struct {
	Key       string `json:"key"`
	Value     []any  `json:"value"`
	ValueType string `json:"valueType"`
}

// SortItem orders listing results
type SortItem struct {
	FrontName string `json:"frontName"`
	Name      string `json:"name"`
	Sort      int    `json:"sort"`
}

// StyleCondition selects the detail records of one product family
type StyleCondition struct {
	Style      any    `json:"style"`
	SaleStatus string `json:"saleStatus"`
	Type       string `json:"type"`
}

type listingData struct {
	ConditionList         []Condition `json:"conditionList"`
	ItemSortList          []SortItem  `json:"itemSortList"`
	NotIncludeSpuCodeList []string    `json:"notIncludeSpuCodeList"`
	StoreCode             string      `json:"storeCode"`
	ChannelCode           int         `json:"channelCode"`
}

type detailData struct {
	ConditionList         []StyleCondition `json:"conditionList"`
	NotIncludeSpuCodeList []string         `json:"notIncludeSpuCodeList"`
	StoreCode             string           `json:"storeCode"`
	ChannelCode           int              `json:"channelCode"`
}

type envelope[T any] struct {
	Data T   `json:"data"`
	Page int `json:"page"`
	Size int `json:"size"`
}

const detailPageSize = 100

// Store identifies the storefront every query is scoped to
type Store struct {
	StoreCode   string
	ChannelCode int
}

var digits = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)

// Literal renders a code the way the storefront sends it: bare number when
// numeric, string otherwise.
func Literal(code string) any {
	if digits.MatchString(code) {
		return json.Number(code)
	}
	return code
}

// Listing selects active, non-deleted items under a category, newest first
func Listing(store Store, categoryCode string, page, size int) ([]byte, error) {
	body := envelope[listingData]{
		Data: listingData{
			ConditionList: []Condition{
				{Key: "type", Value: []any{"0"}, ValueType: "basic"},
				{Key: "saleStatus", Value: []any{1}, ValueType: "list"},
				{Key: "parentCategoryCode", Value: []any{Literal(categoryCode)}, ValueType: "list"},
			},
			ItemSortList:          []SortItem{{FrontName: "", Name: "list_time", Sort: 1}},
			NotIncludeSpuCodeList: []string{},
			StoreCode:             store.StoreCode,
			ChannelCode:           store.ChannelCode,
		},
		Page: page,
		Size: size,
	}

	out, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode listing payload: %w", err)
	}
	return out, nil
}

// Detail selects every on-sale record of a product family
func Detail(store Store, productCode string) ([]byte, error) {
	body := envelope[detailData]{
		Data: detailData{
			ConditionList:         []StyleCondition{{Style: Literal(productCode), SaleStatus: "1", Type: "0"}},
			NotIncludeSpuCodeList: []string{},
			StoreCode:             store.StoreCode,
			ChannelCode:           store.ChannelCode,
		},
		Page: 1,
		Size: detailPageSize,
	}

	out, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detail payload: %w", err)
	}
	return out, nil
}

// NextPage re-reads a listing body and returns it with page incremented.
// Fields it does not know about are carried over untouched.
func NextPage(body []byte) ([]byte, int, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, 0, fmt.Errorf("failed to decode listing payload: %w", err)
	}

	var page int
	if raw, ok := fields["page"]; ok {
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, 0, fmt.Errorf("invalid page in listing payload: %w", err)
		}
	}
	page++

	encoded, err := json.Marshal(page)
	if err != nil {
		return nil, 0, err
	}
	fields["page"] = encoded

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode listing payload: %w", err)
	}
	return out, page, nil
}
