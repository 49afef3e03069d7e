package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// AddContent uploads an opaque blob to the content store and returns its
// content identifier. The store derives the identifier from the bytes; the
// client does not interpret it.
func (c *Client) AddContent(ctx context.Context, content []byte) (*AddContentResponse, error) {
	data, err := c.DoBytes(ctx, "POST", "/api/v0/add", "application/octet-stream", content)
	if err != nil {
		return nil, WithResourceType(err, ResourceContent)
	}

	var result AddContentResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode add response: %w", err)
	}
	if result.CID == "" {
		return nil, fmt.Errorf("store returned no content identifier")
	}
	return &result, nil
}

// CatContent retrieves a blob from the content store by identifier.
func (c *Client) CatContent(ctx context.Context, cid string) ([]byte, error) {
	path := fmt.Sprintf("/api/v0/cat/%s", url.PathEscape(cid))

	data, err := c.DoBytes(ctx, "GET", path, "", nil)
	if err != nil {
		return nil, WithResourceType(err, ResourceContent)
	}
	return data, nil
}
