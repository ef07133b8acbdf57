// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	requested [][]string
	contacts  map[string]string
	err       error
}

func (c *countingResolver) ResolveContacts(ctx context.Context, userIDs []string) (map[string]string, error) {
	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)
	c.requested = append(c.requested, ids)
	if c.err != nil {
		return nil, c.err
	}
	return Static(c.contacts).ResolveContacts(ctx, userIDs)
}

func TestHTTPResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts/batch", r.URL.Path)
		var req batchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		out := batchResponse{Contacts: map[string]string{}}
		for _, id := range req.UserIDs {
			if id != "ghost" {
				out.Contacts[id] = id + "@example.org"
			}
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	resolver := NewHTTPResolver(srv.URL, time.Second)
	got, err := resolver.ResolveContacts(context.Background(), []string{"alice", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "alice@example.org"}, got)
}

func TestHTTPResolver_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPResolver(srv.URL, time.Second).ResolveContacts(context.Background(), []string{"alice"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPResolver_EmptyInputSkipsCall(t *testing.T) {
	resolver := NewHTTPResolver("http://127.0.0.1:0", time.Second)
	got, err := resolver.ResolveContacts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCachedResolver_OnlyFetchesMisses(t *testing.T) {
	next := &countingResolver{contacts: map[string]string{"a": "a@x.org", "b": "b@x.org", "c": "c@x.org"}}
	cached, err := NewCachedResolver(next, 8)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := cached.ResolveContacts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = cached.ResolveContacts(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	require.Len(t, next.requested, 2)
	assert.Equal(t, []string{"a", "b"}, next.requested[0])
	assert.Equal(t, []string{"c"}, next.requested[1])

	// fully cached: no call at all
	_, err = cached.ResolveContacts(ctx, []string{"c", "a"})
	require.NoError(t, err)
	assert.Len(t, next.requested, 2)
}

func TestCachedResolver_PropagatesErrors(t *testing.T) {
	next := &countingResolver{err: errors.New("boom")}
	cached, err := NewCachedResolver(next, 8)
	require.NoError(t, err)

	_, err = cached.ResolveContacts(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestCachedResolver_KeepsHitsWhenFetchFails(t *testing.T) {
	next := &countingResolver{contacts: map[string]string{"alice": "alice@x.org"}}
	cached, err := NewCachedResolver(next, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cached.ResolveContacts(ctx, []string{"alice"})
	require.NoError(t, err)

	next.err = errors.New("down")
	got, err := cached.ResolveContacts(ctx, []string{"alice", "bob"})
	assert.Error(t, err)
	assert.Equal(t, map[string]string{"alice": "alice@x.org"}, got)
	assert.Equal(t, []string{"bob"}, next.requested[1])
}

func TestNewCachedResolver_InvalidSize(t *testing.T) {
	_, err := NewCachedResolver(Static(nil), 0)
	assert.Error(t, err)
}
