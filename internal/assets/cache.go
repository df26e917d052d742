// Package assets keeps the athan alert audio cached on local disk so
// playback at trigger time never depends on network access.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

const athanFileName = "athan.mp3"

type Cache struct {
	dir    string
	http   *http.Client
	spaces *spacesFallback
}

type spacesFallback struct {
	client *s3.S3
	bucket string
	key    string
}

func NewCache(dir string) *Cache {
	return &Cache{
		dir:  dir,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithSpacesFallback configures the bucket copy of the athan audio used
// when the primary CDN URL is unreachable.
func (c *Cache) WithSpacesFallback(endpoint, region, bucket, key, accessKey, secretKey string) error {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}
	sess, err := session.NewSession(config)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	c.spaces = &spacesFallback{client: s3.New(sess), bucket: bucket, key: key}
	return nil
}

// CachedPath returns the local handle when the asset is already cached.
func (c *Cache) CachedPath() (string, bool) {
	path := filepath.Join(c.dir, athanFileName)
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", false
	}
	return path, true
}

// EnsureCached makes the asset available locally. Idempotent: a cache hit
// does no network access. On miss it tries the primary URL, then the
// Spaces fallback, storing the first success atomically.
func (c *Cache) EnsureCached(ctx context.Context, sourceURL string) error {
	if _, ok := c.CachedPath(); ok {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}

	if err := c.fetchPrimary(ctx, sourceURL); err == nil {
		log.Info().Str("url", sourceURL).Msg("athan audio cached from primary source")
		return nil
	} else {
		log.Warn().Err(err).Str("url", sourceURL).Msg("primary athan source failed")
	}

	if c.spaces != nil {
		if err := c.fetchSpaces(ctx); err == nil {
			log.Info().Msg("athan audio cached from spaces fallback")
			return nil
		} else {
			log.Warn().Err(err).Msg("spaces athan fallback failed")
		}
	}
	return fmt.Errorf("athan audio unavailable from all sources")
}

func (c *Cache) fetchPrimary(ctx context.Context, sourceURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return c.store(resp.Body)
}

func (c *Cache) fetchSpaces(ctx context.Context) error {
	out, err := c.spaces.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.spaces.bucket),
		Key:    aws.String(c.spaces.key),
	})
	if err != nil {
		return err
	}
	defer out.Body.Close()
	return c.store(out.Body)
}

// store streams to a temp file and renames it over the final path, so a
// failed download never leaves a truncated asset behind.
func (c *Cache) store(body io.Reader) error {
	tmp, err := os.CreateTemp(c.dir, ".athan_*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(c.dir, athanFileName))
}
