package domain

import "encoding/json"

// Gender labels
const (
	GenderBigBoy       = "Big Boy"
	GenderUnisexAdults = "Unisex Adults"
	GenderWomen        = "women"
	GenderMen          = "men"
	GenderKid          = "kid"
)

// Product is the normalized output record
type Product struct {
	RetailerSKU string   `json:"retailer_sku"`
	Category    []string `json:"category"`
	Trail       Trail    `json:"trail"`
	URL         string   `json:"url"`
	Brand       string   `json:"brand"`
	Name        string   `json:"name"`
	Gender      string   `json:"gender"`
	Price       *float64 `json:"price"`
	Currency    string   `json:"currency"`
	Description []string `json:"description"`
	Care        []string `json:"care"`
	ImageURLs   []string `json:"image_urls"`
	SKUs        []SKU    `json:"skus"`
}

// SKU is one sellable colour/size variant
type SKU struct {
	Colour     string  `json:"colour"`
	Size       string  `json:"size"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	OutOfStock bool    `json:"out_of_stock"`
}

// Key identifies the variant as "colour_size"
func (s SKU) Key() string {
	return s.Colour + "_" + s.Size
}

type skuFields SKU

// MarshalJSON wraps the variant in a single-entry object keyed by Key
func (s SKU) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]skuFields{s.Key(): skuFields(s)})
}

func (s *SKU) UnmarshalJSON(data []byte) error {
	var keyed map[string]skuFields
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	for _, fields := range keyed {
		*s = SKU(fields)
	}
	return nil
}
