package inscriber

import "context"

// Quote is the full price of an order: every image inscribed once, the
// assembled animation HTML inscribed quantity times, plus the flat
// referral fee. Quoted at the customer's requested fee rate; this is the
// amount the customer is asked to pay, not the forwarding fee.
type Quote struct {
	Total       int64 `json:"totalFee"`
	ImagesTotal int64 `json:"totalImagesPrice"`
	HTMLPrice   int64 `json:"htmlPrice"`
	HTMLSize    int64 `json:"htmlSize"`
}

// QuoteOrder prices an order of len(imageSizes) frames and quantity HTML
// copies. htmlSize is the projected size of the assembled animation HTML.
func (c *Client) QuoteOrder(ctx context.Context, imageSizes []int64, htmlSize, feeRate int64, quantity int, rareSats string, referralFee int64) (*Quote, error) {
	var imagesTotal int64
	for _, size := range imageSizes {
		p, err := c.Price(ctx, size, feeRate, 1, rareSats)
		if err != nil {
			return nil, err
		}
		imagesTotal += p.TotalFee
	}

	htmlPrice, err := c.Price(ctx, htmlSize, feeRate, 1, rareSats)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Total:       referralFee + imagesTotal + htmlPrice.TotalFee*int64(quantity),
		ImagesTotal: imagesTotal,
		HTMLPrice:   htmlPrice.TotalFee,
		HTMLSize:    htmlSize,
	}, nil
}
