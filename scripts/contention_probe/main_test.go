package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeCountsOneWinner(t *testing.T) {
	var (
		mu    sync.Mutex
		taken bool
		seen  []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload allocation
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, payload.StudentID)
		w.Header().Set("Content-Type", "application/json")
		if taken {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":{"code":"SEAT_OCCUPIED"}}`))
			return
		}
		taken = true
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"state":"COMMITTED"}}`))
	}))
	defer srv.Close()

	rep := probe(context.Background(), srv.Client(), srv.URL+"/api/v1/allocations", "room-1", 2, 2, []string{"a", "b", "c", "d"})
	assert.Equal(t, 1, rep.Successes)
	assert.Equal(t, 3, rep.ByCode["SEAT_OCCUPIED"])
	assert.Len(t, seen, 4)
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitIDs(" a, ,b "))
	assert.Nil(t, splitIDs(""))
}
