package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_SendsAndReads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/things", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"widget"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]int{"id": 9})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	resp, err := c.DoJSON(context.Background(), http.MethodPost, "/things", map[string]string{"name": "widget"})
	require.NoError(t, err)
	assert.True(t, resp.OK())

	var out struct{ ID int }
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, 9, out.ID)
}

func TestDoJSON_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		http.Error(w, `{"message":"nope"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, time.Second).DoJSON(context.Background(), http.MethodGet, "/", nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDoJSON_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 20*time.Millisecond).DoJSON(context.Background(), http.MethodGet, "/", nil)
	assert.Error(t, err)
}

func TestDecode_InvalidBody(t *testing.T) {
	r := &Response{Body: []byte("<html>")}
	var out map[string]interface{}
	assert.Error(t, r.Decode(&out))
}
