package domain

import "time"

// Quote is one priced observation for an asset, normalized across providers.
// PriceUSD is nil only when the quote came from a metadata-only source; the
// Source field always names the adapter that produced the quote, so a nil
// price is never anonymous.
type Quote struct {
	Asset   string `json:"asset"`
	Network string `json:"network"`

	// Display metadata, optional.
	Name    string `json:"name,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	IconURL string `json:"icon_url,omitempty"`

	PriceUSD     *float64 `json:"price_usd"`
	Change24hPct *float64 `json:"change_24h_pct,omitempty"`
	Volume24hUSD *float64 `json:"volume_24h_usd,omitempty"`
	LiquidityUSD *float64 `json:"liquidity_usd,omitempty"`
	FDVUSD       *float64 `json:"fdv_usd,omitempty"`

	// Source is the provenance tag: the name of the adapter that produced
	// this quote.
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// HasPrice reports whether the quote carries an actual price.
func (q *Quote) HasPrice() bool {
	return q != nil && q.PriceUSD != nil
}
