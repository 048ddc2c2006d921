package e2e

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small helper around the official InfluxDB v2 client
// used by the E2E suite. It hides token/org/bucket plumbing and offers a
// count helper for the measurements the metrics sink writes.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a new client for the given parameters. It assumes
// the server is already running and reachable.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		org:    org,
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// SetupBucket ensures the organisation and bucket exist on the running
// InfluxDB instance. It creates them if missing using the management API.
func (c *InfluxClient) SetupBucket(ctx context.Context) error {
	orgAPI := c.client.OrganizationsAPI()
	org, err := orgAPI.FindOrganizationByName(ctx, c.org)
	if err != nil || org == nil {
		org, err = orgAPI.CreateOrganizationWithName(ctx, c.org)
		if err != nil {
			return fmt.Errorf("create org: %w", err)
		}
	}

	bucketAPI := c.client.BucketsAPI()
	buckets, err := bucketAPI.FindBucketsByOrgName(ctx, c.org)
	if err != nil {
		return err
	}
	if buckets != nil {
		for _, b := range *buckets {
			if b.Name == c.bucket {
				return nil
			}
		}
	}
	if _, err := bucketAPI.CreateBucketWithName(ctx, org, c.bucket); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// CountPoints returns how many points of the given measurement landed in
// the bucket over the last quarter hour. Filtering on a single field keeps
// the row count equal to the point count.
func (c *InfluxClient) CountPoints(ctx context.Context, measurement, field string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:"%s") |> range(start:-15m) |> filter(fn: (r) => r._measurement == "%s" and r._field == "%s")`,
		c.bucket, measurement, field)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	count := 0
	for res.Next() {
		count++
	}
	if err := res.Err(); err != nil {
		return 0, err
	}
	return count, res.Close()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }

// waitForPoints polls CountPoints until the expected number of points is
// visible or the deadline passes. Writes are blocking on the sink side but
// queries can lag a moment behind.
func (c *InfluxClient) waitForPoints(ctx context.Context, measurement, field string, want int, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	var (
		got int
		err error
	)
	for time.Now().Before(deadline) {
		got, err = c.CountPoints(ctx, measurement, field)
		if err == nil && got >= want {
			return got, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return got, err
}
