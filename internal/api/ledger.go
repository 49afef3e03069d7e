package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// RegisterCapsule registers a capsule on the ledger.
func (c *Client) RegisterCapsule(ctx context.Context, req RegisterCapsuleRequest) (*RegisterCapsuleResponse, error) {
	var result RegisterCapsuleResponse
	if err := c.Do(ctx, "POST", "/api/capsules", req, &result); err != nil {
		return nil, WithResourceType(err, ResourceCapsule)
	}
	return &result, nil
}

// GetCapsule retrieves a capsule record by id.
func (c *Client) GetCapsule(ctx context.Context, capsuleID string) (*CapsuleRecord, error) {
	path := fmt.Sprintf("/api/capsules/%s", url.PathEscape(capsuleID))

	var result CapsuleRecord
	if err := c.Do(ctx, "GET", path, nil, &result); err != nil {
		return nil, WithResourceType(err, ResourceCapsule)
	}
	return &result, nil
}

// ListCapsules retrieves a page of capsule records. Empty filter values
// are omitted from the query.
func (c *Client) ListCapsules(ctx context.Context, owner, capsuleType, status string, limit, offset int) (*ListCapsulesResponse, error) {
	q := url.Values{}
	if owner != "" {
		q.Set("owner", owner)
	}
	if capsuleType != "" {
		q.Set("type", capsuleType)
	}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	path := "/api/capsules"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result ListCapsulesResponse
	if err := c.Do(ctx, "GET", path, nil, &result); err != nil {
		return nil, WithResourceType(err, ResourceCapsule)
	}
	return &result, nil
}

// ApproveCapsule records a multisig approval by the given approver.
func (c *Client) ApproveCapsule(ctx context.Context, capsuleID, approver string) (*ApproveCapsuleResponse, error) {
	path := fmt.Sprintf("/api/capsules/%s/approvals", url.PathEscape(capsuleID))
	req := struct {
		Approver string `json:"approver"`
	}{Approver: approver}

	var result ApproveCapsuleResponse
	if err := c.Do(ctx, "POST", path, req, &result); err != nil {
		return nil, WithResourceType(err, ResourceCapsule)
	}
	return &result, nil
}

// QueryUnlockStatus asks the ledger whether the capsule's unlock condition
// is currently satisfied.
func (c *Client) QueryUnlockStatus(ctx context.Context, capsuleID string) (*UnlockStatusResponse, error) {
	path := fmt.Sprintf("/api/capsules/%s/unlock-status", url.PathEscape(capsuleID))

	var result UnlockStatusResponse
	if err := c.Do(ctx, "GET", path, nil, &result); err != nil {
		return nil, WithResourceType(err, ResourceCapsule)
	}
	return &result, nil
}

// MarkUnlocked records a successful unlock on the ledger.
func (c *Client) MarkUnlocked(ctx context.Context, capsuleID string) (*MarkUnlockedResponse, error) {
	path := fmt.Sprintf("/api/capsules/%s/unlock", url.PathEscape(capsuleID))

	var result MarkUnlockedResponse
	if err := c.Do(ctx, "POST", path, nil, &result); err != nil {
		return nil, WithResourceType(err, ResourceCapsule)
	}
	return &result, nil
}
