package ogd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resource/res-123", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "key-abc", q.Get("api-key"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "Maharashtra", q.Get("filters[state]"))
		assert.Equal(t, "Wheat", q.Get("filters[commodity]"))
		assert.Equal(t, "100", q.Get("limit"))

		json.NewEncoder(w).Encode(recordsResponse{Records: []Record{{
			State: "Maharashtra", District: "Pune", Market: "Pune",
			Commodity: "Wheat", ArrivalDate: "19/10/2025",
			MinPrice: "2400", MaxPrice: "2500", ModalPrice: "2450",
		}}})
	}))
	defer srv.Close()

	c := NewClient("key-abc", "res-123", WithBaseURL(srv.URL))
	records, err := c.Records(context.Background(), Filters{State: "Maharashtra", Commodity: "Wheat"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2450", records[0].ModalPrice)
}

func TestRecords_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recordsResponse{})
	}))
	defer srv.Close()

	c := NewClient("key", "res", WithBaseURL(srv.URL))
	records, err := c.Records(context.Background(), Filters{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecords_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("bad", "res", WithBaseURL(srv.URL))
	_, err := c.Records(context.Background(), Filters{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestRecords_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	c := NewClient("key", "res", WithBaseURL(srv.URL))
	_, err := c.Records(context.Background(), Filters{})
	assert.Error(t, err)
}
