package discount

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
	"github.com/Ptamayo26/ferremas-final-sub001/pricing"
)

func cartLines() []models.CartItem {
	return []models.CartItem{
		{ProductID: 1, ProductName: "Martillo carpintero", UnitPrice: 10000, Quantity: 2},
	}
}

func TestValidate_PercentageCode(t *testing.T) {
	var received validateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(validateResponse{Kind: "percentage", Value: 10})
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, srv.Client())
	d, err := r.Validate(context.Background(), "FERIA10", cartLines())
	require.NoError(t, err)

	assert.Equal(t, "FERIA10", d.Code)
	assert.Equal(t, pricing.Percentage, d.Kind)
	assert.Equal(t, int64(10), d.Value)

	// The authority sees the cart snapshot, not just the code.
	assert.Equal(t, "FERIA10", received.Code)
	require.Len(t, received.Items, 1)
	assert.Equal(t, uint(1), received.Items[0].ProductID)
	assert.Equal(t, int64(10000), received.Items[0].Price)
	assert.Equal(t, 2, received.Items[0].Quantity)
}

func TestValidate_FixedAmountCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(validateResponse{Kind: "fixed_amount", Value: 5000})
	}))
	defer srv.Close()

	d, err := NewResolver(srv.URL, srv.Client()).Validate(context.Background(), "MENOS5LUCAS", cartLines())
	require.NoError(t, err)
	assert.Equal(t, pricing.FixedAmount, d.Kind)
	assert.Equal(t, int64(5000), d.Value)
}

func TestValidate_RejectionCollapsesToOneError(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"not found": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such code", http.StatusNotFound)
		},
		"expired": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "expired", http.StatusUnprocessableEntity)
		},
		"garbage body": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		},
		"unknown kind": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(validateResponse{Kind: "bogo", Value: 1})
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := NewResolver(srv.URL, srv.Client()).Validate(context.Background(), "X", cartLines())
			assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		})
	}
}

func TestValidate_TransportErrorCollapsesToo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := NewResolver(srv.URL, nil).Validate(context.Background(), "X", cartLines())
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}
