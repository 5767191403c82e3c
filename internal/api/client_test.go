package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocli/internal/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second)
}

func TestGetProductDecodesEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/p1", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		fmt.Fprint(w, `{"success":true,"data":{"_id":"p1","name":"Milk 500ml","price":3000,"inStock":true,"maxQuantity":5}}`)
	}))

	p, err := client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Milk 500ml", p.Name)
	assert.Equal(t, types.Paise(3000), p.Price)
	assert.Equal(t, 5, p.EffectiveMaxQuantity())
}

func TestValidateCouponRejection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"success":false,"message":"coupon expired"}`)
	}))

	_, err := client.ValidateCoupon(context.Background(), "OLD10", 10000)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "coupon expired", err.Error())
}

func TestServerErrorIsNetworkError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"success":false,"message":"boom"}`)
	}))

	_, err := client.ListCategories(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.False(t, IsValidation(err))
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	client := New("http://127.0.0.1:1", 200*time.Millisecond)

	_, err := client.ListCategories(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestUnauthorizedMapsToSessionExpired(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.OrderHistory(context.Background())
	assert.True(t, errors.Is(err, ErrSessionExpired))
}

func TestTokenSourceSetsAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"success":true,"data":[]}`)
	}))
	defer srv.Close()

	token := "tok-123"
	client := New(srv.URL, time.Second, WithTokenSource(func() string { return token }))

	_, err := client.OrderHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)

	// Token cleared by logout: next request goes out anonymous
	token = ""
	_, err = client.OrderHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestFetchStorefrontFansOut(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/categories":
			fmt.Fprint(w, `{"success":true,"data":[{"_id":"c1","name":"Dairy"}]}`)
		case "/api/products/featured":
			fmt.Fprint(w, `{"success":true,"data":[{"_id":"p1","name":"Milk","price":3000,"inStock":true}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	sf, err := client.FetchStorefront(context.Background())
	require.NoError(t, err)
	require.Len(t, sf.Categories, 1)
	require.Len(t, sf.Featured, 1)
	assert.Equal(t, "Dairy", sf.Categories[0].Name)
}

func TestFetchStorefrontPropagatesFirstFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/categories" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"success":false}`)
			return
		}
		fmt.Fprint(w, `{"success":true,"data":[]}`)
	}))

	_, err := client.FetchStorefront(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}
