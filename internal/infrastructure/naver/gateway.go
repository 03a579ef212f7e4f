package naver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"stockflow/internal/domain"
)

// Gateway implements ports.MarketplaceGateway against the option-stock
// endpoint. The channel's unit of update is one listing with a batch of its
// option quantities.
type Gateway struct {
	client *Client
}

func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

type optionStockUpdateRequest struct {
	ID            int64 `json:"id"`
	StockQuantity int   `json:"stockQuantity"`
}

type optionStockUpdateBody struct {
	OptionStockUpdateRequests []optionStockUpdateRequest `json:"optionStockUpdateRequests"`
}

// ApplyQuantities pushes one listing's changed option quantities. The
// endpoint accepts or rejects the listing as a whole, so a transport or
// status error fails every option in the batch; callers continue with the
// next listing regardless.
func (g *Gateway) ApplyQuantities(ctx context.Context, update domain.ListingUpdate) ([]domain.OptionResult, error) {
	body := optionStockUpdateBody{}
	for _, opt := range update.Options {
		body.OptionStockUpdateRequests = append(body.OptionStockUpdateRequests, optionStockUpdateRequest{
			ID:            opt.OptionID,
			StockQuantity: opt.NewQuantity,
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/external/v1/products/origin-products/%d/option-stock", update.ListingID)
	callErr := g.client.do(ctx, "PUT", path, bytes.NewReader(payload))

	results := make([]domain.OptionResult, 0, len(update.Options))
	for _, opt := range update.Options {
		result := domain.OptionResult{OptionID: opt.OptionID, OK: callErr == nil}
		if callErr != nil {
			result.Err = callErr.Error()
		}
		results = append(results, result)
	}
	return results, callErr
}
