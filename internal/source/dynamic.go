package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/minaret-labs/minaret/internal/model"
)

// dateRangeBuckets are the five fixed per-month ranges the source data is
// authored in. A day belongs to exactly one bucket.
var dateRangeBuckets = []struct {
	from, to int
	label    string
}{
	{1, 5, "1-5"},
	{6, 11, "6-11"},
	{12, 17, "12-17"},
	{18, 24, "18-24"},
	{25, 31, "25-31"},
}

// BucketForDay returns the date-range bucket label covering a day of month.
func BucketForDay(day int) string {
	for _, b := range dateRangeBuckets {
		if day >= b.from && day <= b.to {
			return b.label
		}
	}
	return ""
}

// DynamicClient queries the live remote store for one location/month/bucket
// record. Used when the static tier has no entry for the requested month.
type DynamicClient struct {
	baseURL string
	http    *http.Client
}

func NewDynamicClient(baseURL string) *DynamicClient {
	return &DynamicClient{baseURL: baseURL, http: newHTTPClient()}
}

// FetchRecord queries the bucket containing day for the given location.
func (c *DynamicClient) FetchRecord(ctx context.Context, locationID int, day time.Time) (model.RawScheduleRecord, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%d", locationID))
	q.Set("month", day.Month().String())
	q.Set("range", BucketForDay(day.Day()))

	var rec model.RawScheduleRecord
	if err := getJSON(ctx, c.http, c.baseURL+"/timetable?"+q.Encode(), &rec); err != nil {
		return model.RawScheduleRecord{}, err
	}
	return rec, nil
}
