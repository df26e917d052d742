package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/model"
	"github.com/minaret-labs/minaret/internal/redis"
)

// bundleTTL is how long a published bundle stays valid; bundles are
// pre-published per month and change rarely.
const bundleTTL = 7 * 24 * time.Hour

// StaticClient reads the pre-published long-TTL schedule bundles, addressed
// by (locationSlug, "YYYY-MM"). Fetched bundles are kept in redis so a full
// month of lookups costs one request.
type StaticClient struct {
	baseURL string
	http    *http.Client
}

func NewStaticClient(baseURL string) *StaticClient {
	return &StaticClient{baseURL: baseURL, http: newHTTPClient()}
}

// FetchBundle returns every record of the bundle covering yearMonth.
func (c *StaticClient) FetchBundle(ctx context.Context, locationSlug, yearMonth string) ([]model.RawScheduleRecord, error) {
	cacheKey := fmt.Sprintf("bundle:%s:%s", locationSlug, yearMonth)
	if cached, ok := redis.Get(ctx, cacheKey); ok {
		var records []model.RawScheduleRecord
		if err := json.Unmarshal([]byte(cached), &records); err == nil {
			return records, nil
		}
		log.Warn().Str("key", cacheKey).Msg("discarding undecodable cached bundle")
	}

	url := fmt.Sprintf("%s/%s/%s.json", c.baseURL, locationSlug, yearMonth)
	var records []model.RawScheduleRecord
	if err := getJSON(ctx, c.http, url, &records); err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(records); err == nil {
		redis.Set(ctx, cacheKey, string(encoded), bundleTTL)
	}
	return records, nil
}

// RecordFor scans a bundle for the record covering the given day, matching
// either an exact date or a [date_from, date_to] containment.
func RecordFor(records []model.RawScheduleRecord, day time.Time) (model.RawScheduleRecord, bool) {
	for _, r := range records {
		if r.Covers(day) {
			return r, true
		}
	}
	return model.RawScheduleRecord{}, false
}
