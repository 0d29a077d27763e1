// Package recipeapi is the HTTP transport to the remote recipe service.
// Every call is bounded by the client timeout; the engine itself never
// imposes one. Connection-level failures come back as UnreachableError,
// remote-side errors as RemoteFailureError, so callers can tell "queue it"
// from "retry it".
package recipeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domainRecipe "github.com/savora/savora/domains/recipe"
	domainRemote "github.com/savora/savora/domains/remote"
	pkgError "github.com/savora/savora/pkg/error"
)

// TokenSupplier returns the bearer token for the next request. Supplied by
// the caller; an empty token means unauthenticated.
type TokenSupplier func(ctx context.Context) (string, error)

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSupplier
}

// NewClient builds a transport against baseURL. token may be nil.
func NewClient(baseURL string, timeout time.Duration, token TokenSupplier) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

var _ domainRemote.IRemoteClient = (*Client)(nil)

func (c *Client) FetchRecipe(ctx context.Context, id string) (domainRecipe.Recipe, error) {
	var out domainRecipe.Recipe
	err := c.do(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) Search(ctx context.Context, query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, error) {
	q := url.Values{}
	q.Set("q", query)
	for _, cuisine := range filters.Cuisines {
		q.Add("cuisine", cuisine)
	}
	for _, tag := range filters.Tags {
		q.Add("tag", tag)
	}
	if filters.Diet != "" {
		q.Set("diet", filters.Diet)
	}
	if filters.MaxPrepMinutes > 0 {
		q.Set("max_prep", strconv.Itoa(filters.MaxPrepMinutes))
	}

	var out struct {
		Results []domainRecipe.Recipe `json:"results"`
	}
	err := c.do(ctx, http.MethodGet, "/recipes/search?"+q.Encode(), nil, &out)
	return out.Results, err
}

func (c *Client) Generate(ctx context.Context, req domainRecipe.GenerateRequest) (domainRecipe.Recipe, error) {
	var out domainRecipe.Recipe
	err := c.do(ctx, http.MethodPost, "/recipes/generate", req, &out)
	return out, err
}

func (c *Client) Favorite(ctx context.Context, recipeID string) error {
	return c.do(ctx, http.MethodPut, "/recipes/"+url.PathEscape(recipeID)+"/favorite", nil, nil)
}

func (c *Client) Unfavorite(ctx context.Context, recipeID string) error {
	return c.do(ctx, http.MethodDelete, "/recipes/"+url.PathEscape(recipeID)+"/favorite", nil, nil)
}

func (c *Client) UpdatePreferences(ctx context.Context, prefs domainRecipe.Preferences) error {
	return c.do(ctx, http.MethodPut, "/preferences", prefs, nil)
}

func (c *Client) ListFavorites(ctx context.Context) ([]string, error) {
	var out struct {
		RecipeIDs []string `json:"recipe_ids"`
	}
	err := c.do(ctx, http.MethodGet, "/favorites", nil, &out)
	return out.RecipeIDs, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("token supplier: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgError.UnreachableError(fmt.Sprintf("%s %s: %v", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return pkgError.RemoteFailureError(fmt.Sprintf("%s %s: status %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(msg))))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return pkgError.RemoteFailureError(fmt.Sprintf("%s %s: decode response: %v", method, path, err))
		}
	}
	return nil
}
