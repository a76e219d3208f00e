package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type feedProduct struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// HTTPFeed 讀取 fakestoreapi 格式的商品清單
type HTTPFeed struct {
	url        string
	codePrefix string
	client     *http.Client
}

func NewHTTPFeed(url string, client *http.Client) *HTTPFeed {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPFeed{url: url, codePrefix: "feed-", client: client}
}

func (f *HTTPFeed) Name() string {
	return "http:" + f.url
}

func (f *HTTPFeed) Fetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog feed: unexpected status %d", resp.StatusCode)
	}

	var products []feedProduct
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog feed: %w", err)
	}

	items := make([]Item, 0, len(products))
	for _, p := range products {
		if p.Title == "" || p.Price.IsNegative() {
			continue
		}
		items = append(items, Item{
			Code:        fmt.Sprintf("%s%d", f.codePrefix, p.ID),
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			Category:    p.Category,
			Image:       p.Image,
		})
	}
	return items, nil
}
