package polymarket

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// HistoryURL returns the history endpoint for marketID.
func (c *Client) HistoryURL(marketID string) (*url.URL, error) {
	path := strings.ReplaceAll(c.historyTemplate, "{market_id}", url.PathEscape(marketID))
	return c.resolve(path)
}

// FetchHistory retrieves the raw price-history payload of one market. The
// payload is returned undecoded beyond generic JSON; see history.ExtractSamples.
func (c *Client) FetchHistory(ctx context.Context, marketID string) (any, error) {
	u, err := c.HistoryURL(marketID)
	if err != nil {
		return nil, err
	}
	payload, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", marketID, err)
	}
	return payload, nil
}
