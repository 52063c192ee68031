// Package normalizer turns a product detail API response into a Product record.
package normalizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"puma/crawler/internal/domain"
	"puma/crawler/internal/payload"
	"puma/crawler/internal/state"

	log "github.com/sirupsen/logrus"
)

type imageRef struct {
	PicURL string `json:"picUrl"`
}

type attributeValue struct {
	FrontName string     `json:"attributeValueFrontName"`
	Images    []imageRef `json:"itemAttributeValueImageList"`
}

type attribute struct {
	Values []attributeValue `json:"attributeValueList"`
}

type rawSKU struct {
	Attributes []attribute    `json:"attrSaleList"`
	NetQty     payload.Number `json:"netqty"`
}

type detailEntry struct {
	Code        payload.Code   `json:"code"`
	Title       string         `json:"title"`
	SalePrice   payload.Number `json:"salePrice"`
	Description string         `json:"description"`
	Attributes  []attribute    `json:"attrSaleList"`
	ItemImages  []*imageRef    `json:"itemImageList"`
	SKUs        []rawSKU       `json:"skuList"`
}

type detailResponse struct {
	Data *struct {
		ItemDetailList []detailEntry `json:"itemDetailList"`
	} `json:"data"`
}

type Normalizer struct {
	seen     state.SeenSet
	brand    string
	currency string
}

// New builds a normalizer that suppresses ids already present in seen
func New(seen state.SeenSet, brand, currency string) *Normalizer {
	return &Normalizer{
		seen:     seen,
		brand:    brand,
		currency: currency,
	}
}

// ExtractProductID returns the penultimate path segment of the product URL
func ExtractProductID(meta domain.Meta) string {
	parts := strings.Split(meta.URL, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

// Parse normalizes one detail response. It returns nil for duplicates and for
// payloads without detail records. The id is marked seen before the payload
// is read, so a malformed payload is never retried.
func (n *Normalizer) Parse(ctx context.Context, resp *domain.Response) (*domain.Product, error) {
	meta := resp.Meta()

	id := ExtractProductID(meta)
	if id == "" {
		log.Debugf("No product id in %q", meta.URL)
		return nil, nil
	}

	added, err := n.seen.Add(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark product %s seen: %w", id, err)
	}
	if !added {
		log.Debugf("Skipping already seen product %s", id)
		return nil, nil
	}

	var detail detailResponse
	if err := json.Unmarshal(resp.Body, &detail); err != nil {
		log.Warnf("⚠️ Unreadable detail response for %s: %v", id, err)
		return nil, nil
	}
	if detail.Data == nil || len(detail.Data.ItemDetailList) == 0 {
		log.Debugf("No detail records for %s", id)
		return nil, nil
	}

	entries := detail.Data.ItemDetailList
	name := entries[0].Title
	description, care := SplitCare(TextLines(entries[0].Description))

	return &domain.Product{
		RetailerSKU: id,
		Category:    meta.Trail.Category(),
		Trail:       meta.Trail.Copy(),
		URL:         meta.URL,
		Brand:       n.brand,
		Name:        name,
		Gender:      Gender(name),
		Price:       price(id, entries),
		Currency:    n.currency,
		Description: description,
		Care:        care,
		ImageURLs:   imageURLs(entries),
		SKUs:        n.skus(entries),
	}, nil
}

func price(id string, entries []detailEntry) *float64 {
	for _, entry := range entries {
		if entry.Code.String() == id {
			p := float64(entry.SalePrice)
			return &p
		}
	}
	return nil
}

// imageURLs prefers the colour attribute gallery and falls back to the first item image
func imageURLs(entries []detailEntry) []string {
	urls := []string{}
	for _, entry := range entries {
		if gallery := firstValue(entry.Attributes, 0).Images; len(gallery) > 0 {
			for _, img := range gallery {
				urls = append(urls, img.PicURL)
			}
			continue
		}
		if len(entry.ItemImages) > 0 && entry.ItemImages[0] != nil {
			urls = append(urls, entry.ItemImages[0].PicURL)
		}
	}
	return urls
}

func (n *Normalizer) skus(entries []detailEntry) []domain.SKU {
	skus := []domain.SKU{}
	for _, entry := range entries {
		for _, raw := range entry.SKUs {
			skus = append(skus, domain.SKU{
				Colour:     firstValue(raw.Attributes, 0).FrontName,
				Size:       firstValue(raw.Attributes, 1).FrontName,
				Price:      float64(entry.SalePrice),
				Currency:   n.currency,
				OutOfStock: raw.NetQty <= 0,
			})
		}
	}
	return skus
}

// firstValue returns the first value of the i-th attribute, or a zero value
func firstValue(attrs []attribute, i int) attributeValue {
	if i >= len(attrs) || len(attrs[i].Values) == 0 {
		return attributeValue{}
	}
	return attrs[i].Values[0]
}
