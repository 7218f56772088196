package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rewired-gh/polyodds/internal/models"
)

// DiscoverOptions controls market discovery.
type DiscoverOptions struct {
	Search       string
	ResolvedOnly bool
	PageSize     int
	// MaxPages caps the number of pages read. Zero means no cap.
	MaxPages int
}

// DiscoverMarkets pages through the markets endpoint and returns every item
// that carries both an ID and a title. Paging stops at an empty page, a
// missing cursor, or after MaxPages pages.
func (c *Client) DiscoverMarkets(ctx context.Context, opts DiscoverOptions) ([]models.Market, error) {
	var markets []models.Market
	cursor := ""

	for page := 0; ; {
		u, err := c.resolve(c.marketsPath)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("limit", strconv.Itoa(opts.PageSize))
		q.Set("search", opts.Search)
		if opts.ResolvedOnly {
			q.Set("closed", "true")
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		u.RawQuery = q.Encode()

		payload, err := c.getJSON(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch markets page %d: %w", page+1, err)
		}

		items, next := marketPage(payload)
		if len(items) == 0 {
			break
		}
		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			market := NormalizeMarket(item)
			if market.Validate() != nil {
				continue
			}
			markets = append(markets, market)
		}

		page++
		if opts.MaxPages > 0 && page >= opts.MaxPages {
			break
		}
		if next == "" {
			break
		}
		cursor = next
	}

	return markets, nil
}

// marketPage splits a discovery response into its items and the next cursor.
// The endpoint answers with either a bare list or {"data": [...], "nextCursor": "..."}.
func marketPage(payload any) ([]any, string) {
	switch p := payload.(type) {
	case []any:
		return p, ""
	case map[string]any:
		items, _ := p["data"].([]any)
		return items, stringify(p["nextCursor"])
	}
	return nil, ""
}

// NormalizeMarket maps a raw market record onto models.Market, probing the
// field names used by the different Polymarket endpoints.
func NormalizeMarket(item map[string]any) models.Market {
	m := models.Market{
		ID:     firstString(item, "id", "market_id", "conditionId"),
		Slug:   firstString(item, "slug"),
		Title:  firstString(item, "title", "question"),
		Status: firstString(item, "status", "state", "resolved"),
		Raw:    item,
	}
	if closeTime := firstString(item, "closeTime", "endDate", "end_date"); closeTime != "" {
		m.CloseTime = &closeTime
	}
	return m
}

func firstString(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringify(item[key]); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
