package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/loan-match/backend/internal/model/chat"
)

func TestHTTPAskerSendsPayload(t *testing.T) {
	var got askPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ask", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"The APR is 11.5%."}`))
	}))
	defer srv.Close()

	asker := NewHTTPAsker(srv.URL+"/", time.Second)
	answer, err := asker.Ask(context.Background(), "1", "What is the APR?", nil)
	require.NoError(t, err)
	assert.Equal(t, "The APR is 11.5%.", answer)

	assert.Equal(t, "1", got.ProductID)
	assert.Equal(t, "What is the APR?", got.Message)
	assert.NotNil(t, got.History)
	assert.Empty(t, got.History)
}

func TestHTTPAskerMapsErrorStatuses(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   string
	}{
		{http.StatusNotFound, `{"answer":"Product not found."}`, "Product not found."},
		{http.StatusInternalServerError, `{"answer":"Something went wrong."}`, "Something went wrong."},
		{http.StatusBadRequest, `{"error":"invalid message: must not be blank"}`, "invalid message: must not be blank"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))

		asker := NewHTTPAsker(srv.URL, time.Second)
		_, err := asker.Ask(context.Background(), "1", "hi", []chat.Message{chat.UserMessage("earlier")})
		srv.Close()

		var re *ResponseError
		require.True(t, errors.As(err, &re), "status %d", tc.status)
		assert.Equal(t, tc.status, re.StatusCode)
		assert.Equal(t, tc.want, re.Message)
	}
}

func TestSessionOverHTTPAsker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload askPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "turns=" + string(rune('0'+len(payload.History)))})
	}))
	defer srv.Close()

	s := openSession(t, NewHTTPAsker(srv.URL, time.Second))
	_, err := s.Submit(context.Background(), "one")
	require.NoError(t, err)
	reply, err := s.Submit(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, "turns=2", reply.Content)
}

func TestHTTPAskerProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/api/products/1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"product not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"1","bank":"HDFC","name":"Flexi Personal Loan","rate_apr":11.5,"badges":["Fast Disbursal"]}`))
	}))
	defer srv.Close()

	asker := NewHTTPAsker(srv.URL, time.Second)

	found, err := asker.Product(context.Background(), "1")
	require.NoError(t, err)
	p, ok := found.Get()
	require.True(t, ok)
	assert.Equal(t, "HDFC", p.Bank)
	assert.Equal(t, 11.5, p.RateAPR)

	missing, err := asker.Product(context.Background(), "999")
	require.NoError(t, err)
	assert.True(t, missing.IsAbsent())
}
