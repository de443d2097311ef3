package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "billboards/pkg/errors"
	"billboards/pkg/model"
)

// InventoryClient reads billboards from the inventory service.
type InventoryClient struct {
	httpClient *HttpClient
}

func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryClient {
	return &InventoryClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *InventoryClient) GetBillboard(ctx context.Context, id string) (*model.Billboard, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/billboards/id/"+url.PathEscape(id))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "inventory service is unreachable", http.StatusServiceUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFoundWithID("Billboard", id)
	case resp.StatusCode >= 400:
		return nil, apperrors.New(apperrors.CodeUnavailable,
			fmt.Sprintf("inventory service error: %s", GetErrorMessage(resp)),
			http.StatusBadGateway)
	}

	return decodeBillboard(resp)
}

func decodeBillboard(resp *Response) (*model.Billboard, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode billboard wrapper: %s: %w", resp.ToString(), err)
	}

	var billboard model.Billboard
	if err := json.Unmarshal(wrapper.Data, &billboard); err != nil {
		return nil, fmt.Errorf("could not decode billboard json: %s: %w", resp.ToString(), err)
	}
	return &billboard, nil
}
