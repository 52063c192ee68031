// Package walker turns the seed page into category listing requests and each
// listing page into product detail requests plus the request for the next page.
package walker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"puma/crawler/internal/config"
	"puma/crawler/internal/domain"
	"puma/crawler/internal/payload"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"github.com/titanous/json5"
)

const (
	initialStateMarker = "window.__INITIAL_STATE__"
	statusOK           = "0"
)

var categoryListRegex = regexp.MustCompile(`urlRename":\[(.*)\],"home`)

type Walker struct {
	site  config.SiteConfig
	store payload.Store
}

func New(site config.SiteConfig) *Walker {
	return &Walker{
		site: site,
		store: payload.Store{
			StoreCode:   site.StoreCode,
			ChannelCode: site.ChannelCode,
		},
	}
}

// SeedRequest is the entry point of a crawl
func (w *Walker) SeedRequest() *domain.Request {
	return &domain.Request{
		Method:     http.MethodGet,
		URL:        w.site.SeedURL,
		Callback:   domain.CallbackSeed,
		DontFilter: true,
	}
}

// DiscoverCategories reads the category table embedded in the seed page
// script. A missing or malformed table yields no categories.
func (w *Walker) DiscoverCategories(html []byte) []domain.Category {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		log.Warnf("⚠️ Failed to parse seed page: %v", err)
		return nil
	}

	var blob string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, initialStateMarker) {
			return true
		}
		if matches := categoryListRegex.FindStringSubmatch(text); len(matches) > 1 {
			blob = matches[1]
		}
		return false
	})

	if blob == "" {
		log.Warn("⚠️ No category table found on seed page")
		return nil
	}

	var entries []map[string]any
	if err := json5.Unmarshal([]byte("["+blob+"]"), &entries); err != nil {
		log.Warnf("⚠️ Category table is not a plain data literal: %v", err)
		return nil
	}

	base := strings.TrimRight(w.site.BaseURL, "/")
	categories := make([]domain.Category, 0, len(entries))
	for _, entry := range entries {
		code := payload.CodeOf(entry["classify"])
		goal := payload.CodeOf(entry["goalurl"])
		if code == "" || goal == "" {
			continue
		}

		segments := strings.Split(goal, "/")
		if len(segments) > 0 {
			segments = segments[1:]
		}

		categories = append(categories, domain.Category{
			Code:     code,
			Segments: segments,
			URL:      base + goal,
		})
	}

	log.Infof("🗂️ Discovered %d categories", len(categories))
	return categories
}

// BuildListingRequest issues the listing query for one page of a category
func (w *Walker) BuildListingRequest(categoryCode string, trail domain.Trail, page, size int) (*domain.Request, error) {
	body, err := payload.Listing(w.store, categoryCode, page, size)
	if err != nil {
		return nil, err
	}

	return &domain.Request{
		Method:   http.MethodPost,
		URL:      w.site.ListingURL(),
		Headers:  jsonHeaders(),
		Body:     body,
		Callback: domain.CallbackListing,
		Meta: domain.Meta{
			CategoryCode: categoryCode,
			Trail:        trail.Copy(),
		},
	}, nil
}

// HandleSeed emits the first listing page of every discovered category
func (w *Walker) HandleSeed(resp *domain.Response) []domain.Output {
	var outputs []domain.Output
	for _, category := range w.DiscoverCategories(resp.Body) {
		req, err := w.BuildListingRequest(category.Code, domain.NewTrail(category), 1, w.site.PageSize)
		if err != nil {
			log.Errorf("❌ Failed to build listing request for %s: %v", category.Code, err)
			continue
		}
		outputs = append(outputs, domain.Output{Request: req})
	}
	return outputs
}

type listedSKU struct {
	Code payload.Code `json:"code"`
}

type listedProduct struct {
	SpuCode payload.Code `json:"spuCode"`
	SkuList []listedSKU  `json:"skuList"`
}

type listingResponse struct {
	Code payload.Code `json:"code"`
	Data *struct {
		ProductList []listedProduct `json:"productList"`
	} `json:"data"`
}

// HandleListingResponse emits one detail request per listed product and then
// the next page request. A non-"0" status or an empty page ends the walk.
func (w *Walker) HandleListingResponse(resp *domain.Response) []domain.Output {
	meta := resp.Meta()

	var listing listingResponse
	if err := json.Unmarshal(resp.Body, &listing); err != nil {
		log.Warnf("⚠️ Unreadable listing response from %s: %v", resp.URL, err)
		return nil
	}

	if listing.Code.String() != statusOK || listing.Data == nil || len(listing.Data.ProductList) == 0 {
		log.Debugf("Listing for category %s ended (status %q)", meta.CategoryCode, listing.Code)
		return nil
	}

	outputs := make([]domain.Output, 0, len(listing.Data.ProductList)+1)
	for _, product := range listing.Data.ProductList {
		req, err := w.detailRequest(product, meta)
		if err != nil {
			log.Warnf("⚠️ Skipping listed product %q: %v", product.SpuCode, err)
			continue
		}
		outputs = append(outputs, domain.Output{Request: req})
	}

	if next, err := w.nextPageRequest(resp, meta); err != nil {
		log.Warnf("⚠️ Cannot advance listing for category %s: %v", meta.CategoryCode, err)
	} else {
		outputs = append(outputs, domain.Output{Request: next})
	}

	return outputs
}

// ProductURL is the storefront page of a product colourway
func (w *Walker) ProductURL(spuCode, skuCode string) string {
	return fmt.Sprintf("%s/pdp/%s/%s.html", strings.TrimRight(w.site.BaseURL, "/"), spuCode, skuCode)
}

func (w *Walker) detailRequest(product listedProduct, meta domain.Meta) (*domain.Request, error) {
	spu := product.SpuCode.String()
	if spu == "" {
		return nil, fmt.Errorf("missing spuCode")
	}
	if len(product.SkuList) == 0 || product.SkuList[0].Code == "" {
		return nil, fmt.Errorf("no representative sku")
	}

	body, err := payload.Detail(w.store, styleCode(spu))
	if err != nil {
		return nil, err
	}

	return &domain.Request{
		Method:   http.MethodPost,
		URL:      w.site.DetailURL(),
		Headers:  jsonHeaders(),
		Body:     body,
		Callback: domain.CallbackProduct,
		Meta: domain.Meta{
			CategoryCode: meta.CategoryCode,
			Trail:        meta.Trail.Copy(),
			URL:          w.ProductURL(spu, product.SkuList[0].Code.String()),
		},
	}, nil
}

func (w *Walker) nextPageRequest(resp *domain.Response, meta domain.Meta) (*domain.Request, error) {
	if resp.Request == nil {
		return nil, fmt.Errorf("response carries no originating request")
	}

	body, page, err := payload.NextPage(resp.Request.Body)
	if err != nil {
		return nil, err
	}

	url := resp.Request.URL
	if url == "" {
		url = resp.URL
	}

	return &domain.Request{
		Method:   http.MethodPost,
		URL:      url,
		Headers:  jsonHeaders(),
		Body:     body,
		Callback: domain.CallbackListing,
		Meta: domain.Meta{
			CategoryCode: meta.CategoryCode,
			Trail:        meta.Trail.WithPage(page),
		},
	}, nil
}

// styleCode drops the two-character colourway suffix of an spu code
func styleCode(spu string) string {
	if len(spu) <= 2 {
		return spu
	}
	return spu[:len(spu)-2]
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": domain.ContentTypeJSON}
}
