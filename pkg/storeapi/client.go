// Package storeapi is the storefront's client for the marketplace REST
// backend. It is also the normalization boundary for the backend's two item
// shapes: every record passes through normalizeItem exactly once on its way
// in, so the rest of the storefront only ever sees canonical fields.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrUnavailable covers transport failures and backend 5xx responses.
	ErrUnavailable = errors.New("catalog unavailable")
	// ErrNotFound is a normal negative outcome, distinct from transport
	// failure.
	ErrNotFound = errors.New("not found")

	ErrDuplicateFavorite = errors.New("duplicate favorite")
	ErrNotFavorited      = errors.New("not favorited")
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SetToken sets the bearer token attached to mutating requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: backend returned %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrDuplicateFavorite
	case resp.StatusCode >= 400:
		return apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func apiError(resp *http.Response) error {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Message != "" {
		return fmt.Errorf("backend %d: %s", resp.StatusCode, e.Message)
	}
	return fmt.Errorf("backend returned %d", resp.StatusCode)
}

// Items fetches the full catalog, normalized.
func (c *Client) Items(ctx context.Context) ([]Item, error) {
	var raw []rawItem
	if err := c.do(ctx, http.MethodGet, "/items", nil, &raw); err != nil {
		return nil, err
	}
	items := make([]Item, len(raw))
	for i, r := range raw {
		items[i] = normalizeItem(r)
	}
	return items, nil
}

func (c *Client) Item(ctx context.Context, id string) (Item, error) {
	var raw rawItem
	if err := c.do(ctx, http.MethodGet, "/items/"+id, nil, &raw); err != nil {
		return Item{}, err
	}
	return normalizeItem(raw), nil
}

// ItemsByOwner filters the full catalog client-side; the backend has no
// dedicated owner index. The owner reference is coerced to a string id by
// the normalizer, whether it arrived bare or as an embedded object.
func (c *Client) ItemsByOwner(ctx context.Context, ownerID string) ([]Item, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

type ItemDraft struct {
	ItemName    string  `json:"itemName"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

func (c *Client) CreateItem(ctx context.Context, draft ItemDraft) (Item, error) {
	var raw rawItem
	if err := c.do(ctx, http.MethodPost, "/items", draft, &raw); err != nil {
		return Item{}, err
	}
	return normalizeItem(raw), nil
}

type ItemPatch struct {
	ItemName    *string  `json:"itemName,omitempty"`
	Description *string  `json:"description,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

func (c *Client) UpdateItem(ctx context.Context, id string, patch ItemPatch) (Item, error) {
	var raw rawItem
	if err := c.do(ctx, http.MethodPut, "/items/"+id, patch, &raw); err != nil {
		return Item{}, err
	}
	return normalizeItem(raw), nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/items/"+id, nil, nil)
}

func (c *Client) User(ctx context.Context, id string) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// AddFavourite appends itemID to the user's favourites list. A duplicate is
// rejected by the backend and surfaces as ErrDuplicateFavorite.
func (c *Client) AddFavourite(ctx context.Context, userID, itemID string) ([]string, error) {
	var resp struct {
		Favourites []string `json:"favourites"`
	}
	body := map[string]string{"itemId": itemID}
	if err := c.do(ctx, http.MethodPost, "/users/"+userID, body, &resp); err != nil {
		return nil, err
	}
	return resp.Favourites, nil
}

func (c *Client) RemoveFavourite(ctx context.Context, userID, itemID string) ([]string, error) {
	var resp struct {
		Favourites []string `json:"favourites"`
	}
	err := c.do(ctx, http.MethodDelete, "/users/"+userID+"/favourites/"+itemID, nil, &resp)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFavorited
		}
		return nil, err
	}
	return resp.Favourites, nil
}

// BumpFavoriteCount applies a +1/-1 delta to the item's denormalized
// counter. This is the second, non-transactional call of the favorites
// saga.
func (c *Client) BumpFavoriteCount(ctx context.Context, itemID string, delta int) error {
	body := map[string]int{"delta": delta}
	return c.do(ctx, http.MethodPut, "/items/"+itemID+"/favorite-count", body, nil)
}
