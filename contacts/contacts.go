// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danielhkuo/microgrants/metrics"
)

var ErrUnavailable = errors.New("contact service unavailable")

// Resolver maps user IDs to contact identities (email addresses). IDs
// without a known contact are absent from the result. On error the map may
// still hold the contacts that were resolved.
type Resolver interface {
	ResolveContacts(ctx context.Context, userIDs []string) (map[string]string, error)
}

// HTTPResolver resolves contacts through the identity service's batch endpoint.
type HTTPResolver struct {
	baseURL string
	http    *http.Client
}

func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type batchRequest struct {
	UserIDs []string `json:"user_ids"`
}

type batchResponse struct {
	Contacts map[string]string `json:"contacts"`
}

func (r *HTTPResolver) ResolveContacts(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}

	body, err := json.Marshal(batchRequest{UserIDs: userIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/contacts/batch", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build contact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %w", ErrUnavailable, err)
	}
	if out.Contacts == nil {
		out.Contacts = map[string]string{}
	}
	return out.Contacts, nil
}

// CachedResolver remembers resolved contacts in an LRU cache and only asks
// the wrapped resolver for misses.
type CachedResolver struct {
	next  Resolver
	cache *lru.Cache[string, string]
}

func NewCachedResolver(next Resolver, size int) (*CachedResolver, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact cache: %w", err)
	}
	return &CachedResolver{next: next, cache: cache}, nil
}

func (c *CachedResolver) ResolveContacts(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	var misses []string
	for _, id := range userIDs {
		if email, ok := c.cache.Get(id); ok {
			out[id] = email
			continue
		}
		misses = append(misses, id)
	}
	metrics.RecordContactCache(len(out), len(misses))
	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.next.ResolveContacts(ctx, misses)
	if err != nil {
		return out, err
	}
	for id, email := range fetched {
		c.cache.Add(id, email)
		out[id] = email
	}
	return out, nil
}

// Static serves contacts from a fixed map. A nil map knows nobody.
type Static map[string]string

func (s Static) ResolveContacts(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if email, ok := s[id]; ok {
			out[id] = email
		}
	}
	return out, nil
}
