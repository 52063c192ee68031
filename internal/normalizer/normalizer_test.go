package normalizer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"puma/crawler/internal/domain"
	"puma/crawler/internal/state"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var trail = domain.Trail{
	{Segments: []string{"men", "shoes"}, URL: "https://cn.puma.com/men/shoes"},
	{Page: 2},
}

func productResponse(url, body string) *domain.Response {
	return &domain.Response{
		Body: []byte(body),
		Request: &domain.Request{
			Callback: domain.CallbackProduct,
			Meta:     domain.Meta{CategoryCode: "1001", Trail: trail.Copy(), URL: url},
		},
	}
}

func newNormalizer() *Normalizer {
	return New(state.NewMemorySeenSet(), "PUMA", "CNY")
}

func TestExtractProductID(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
	}{
		{"Product page", productURL, "37512301"},
		{"Trailing slash", "https://cn.puma.com/pdp/375/", "375"},
		{"No path", "37512301", ""},
		{"Empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ExtractProductID(domain.Meta{URL: tc.url}))
		})
	}
}

func TestParse(t *testing.T) {
	n := newNormalizer()

	product, err := n.Parse(context.Background(), productResponse(productURL, detailBody))
	require.NoError(t, err)
	require.NotNil(t, product)

	price := 599.0
	want := &domain.Product{
		RetailerSKU: "37512301",
		Category:    []string{"men", "shoes"},
		Trail:       trail,
		URL:         productURL,
		Brand:       "PUMA",
		Name:        "男女同款跑步鞋",
		Gender:      domain.GenderUnisexAdults,
		Price:       &price,
		Currency:    "CNY",
		Description: []string{"轻盈缓震", "外底：橡胶"},
		Care:        []string{"鞋面：织物", "内里：聚酯纤维"},
		ImageURLs: []string{
			"https://img.puma.com/a1.jpg",
			"https://img.puma.com/a2.jpg",
			"https://img.puma.com/i2.jpg",
		},
		SKUs: []domain.SKU{
			{Colour: "Black", Size: "42", Price: 599, Currency: "CNY", OutOfStock: true},
			{Colour: "Black", Size: "43", Price: 599, Currency: "CNY", OutOfStock: false},
			{Colour: "Red", Size: "M", Price: 649, Currency: "CNY", OutOfStock: false},
			{Colour: "Red", Size: "M", Price: 649, Currency: "CNY", OutOfStock: true},
		},
	}

	if diff := cmp.Diff(want, product); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseKeepsDuplicateSKUKeys(t *testing.T) {
	product, err := newNormalizer().Parse(context.Background(), productResponse(productURL, detailBody))
	require.NoError(t, err)

	count := 0
	for _, sku := range product.SKUs {
		if sku.Key() == "Red_M" {
			count++
		}
	}
	require.Equal(t, 2, count)
}

func TestParseSKUSerialization(t *testing.T) {
	product, err := newNormalizer().Parse(context.Background(), productResponse(productURL, detailBody))
	require.NoError(t, err)

	encoded, err := json.Marshal(product.SKUs[0])
	require.NoError(t, err)
	require.JSONEq(t, `{"Black_42": {"colour": "Black", "size": "42", "price": 599, "currency": "CNY", "out_of_stock": true}}`, string(encoded))
}

func TestParseSuppressesDuplicates(t *testing.T) {
	n := newNormalizer()
	ctx := context.Background()

	first, err := n.Parse(ctx, productResponse(productURL, detailBody))
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := n.Parse(ctx, productResponse(productURL, detailBody))
	require.NoError(t, err)
	require.Nil(t, second)

	// Another colourway URL of the same family maps to a different id.
	other, err := n.Parse(ctx, productResponse("https://cn.puma.com/pdp/37512302/37512302001.html", detailBody))
	require.NoError(t, err)
	require.NotNil(t, other)
	require.NotNil(t, other.Price)
	require.Equal(t, 649.0, *other.Price)
}

func TestParseMarksSeenBeforeReadingPayload(t *testing.T) {
	n := newNormalizer()
	ctx := context.Background()

	product, err := n.Parse(ctx, productResponse(productURL, `{"data": {"itemDetailList": [`))
	require.NoError(t, err)
	require.Nil(t, product)

	product, err = n.Parse(ctx, productResponse(productURL, detailBody))
	require.NoError(t, err)
	require.Nil(t, product)
}

func TestParseWithoutDetails(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"Missing data", `{"code": "0"}`},
		{"Null data", `{"data": null}`},
		{"Empty list", `{"data": {"itemDetailList": []}}`},
		{"Not JSON", `<html></html>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			product, err := newNormalizer().Parse(context.Background(), productResponse(productURL, tc.body))
			require.NoError(t, err)
			require.Nil(t, product)
		})
	}
}

func TestParseWithoutProductID(t *testing.T) {
	seen := state.NewMemorySeenSet()
	n := New(seen, "PUMA", "CNY")

	product, err := n.Parse(context.Background(), productResponse("", detailBody))
	require.NoError(t, err)
	require.Nil(t, product)

	size, err := seen.Len(context.Background())
	require.NoError(t, err)
	require.Zero(t, size)
}

func TestParseMinimalEntry(t *testing.T) {
	body := `{"data": {"itemDetailList": [{"code": "99", "title": "PUMA 棒球帽", "skuList": [{"netqty": 3}]}]}}`

	product, err := newNormalizer().Parse(context.Background(), productResponse("https://cn.puma.com/pdp/11111111/1.html", body))
	require.NoError(t, err)
	require.NotNil(t, product)

	require.Nil(t, product.Price)
	require.Equal(t, domain.GenderUnisexAdults, product.Gender)
	require.Empty(t, product.Description)
	require.Empty(t, product.Care)
	require.Empty(t, product.ImageURLs)
	require.Equal(t, []domain.SKU{{Colour: "", Size: "", Currency: "CNY"}}, product.SKUs)
}

type failingSeenSet struct {
	state.SeenSet
}

func (failingSeenSet) Add(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestParseSeenSetFailure(t *testing.T) {
	n := New(failingSeenSet{}, "PUMA", "CNY")

	product, err := n.Parse(context.Background(), productResponse(productURL, detailBody))
	require.ErrorContains(t, err, "connection refused")
	require.Nil(t, product)
}
