package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/minaret-labs/minaret/internal/model"
)

func TestBucketForDay(t *testing.T) {
	expected := map[string][]int{
		"1-5":   {1, 2, 3, 4, 5},
		"6-11":  {6, 7, 8, 9, 10, 11},
		"12-17": {12, 13, 14, 15, 16, 17},
		"18-24": {18, 19, 20, 21, 22, 23, 24},
		"25-31": {25, 26, 27, 28, 29, 30, 31},
	}
	for label, days := range expected {
		for _, d := range days {
			assert.Equal(t, label, BucketForDay(d), "day %d", d)
		}
	}
}

func TestDynamicFetchRecordQueriesBucket(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"location": r.URL.Query().Get("location"),
			"month":    r.URL.Query().Get("month"),
			"range":    r.URL.Query().Get("range"),
		}
		json.NewEncoder(w).Encode(model.RawScheduleRecord{
			DateFrom: "2026-05-06",
			DateTo:   "2026-05-11",
			Fajr:     model.PrayerTimes{Adhan: "04:30", Iqamah: "04:50"},
		})
	}))
	defer srv.Close()

	client := NewDynamicClient(srv.URL)
	day := time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)

	rec, err := client.FetchRecord(context.Background(), 42, day)
	assert.NoError(t, err)
	assert.Equal(t, "42", gotQuery["location"])
	assert.Equal(t, "May", gotQuery["month"])
	assert.Equal(t, "6-11", gotQuery["range"])
	assert.True(t, rec.Covers(day))
}

func TestDynamicFetchRecordRetriesOnce(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(model.RawScheduleRecord{Date: "2026-05-08"})
	}))
	defer srv.Close()

	client := NewDynamicClient(srv.URL)
	_, err := client.FetchRecord(context.Background(), 42, time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDynamicFetchRecordGivesUpAfterRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewDynamicClient(srv.URL)
	_, err := client.FetchRecord(context.Background(), 42, time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
	assert.Equal(t, 2, attempts)
}
