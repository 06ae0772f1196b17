package eloqua

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SyncStatus is the state of a bulk sync.
type SyncStatus string

// Sync states reported by the platform. Anything else maps to StatusUnknown.
const (
	StatusPending SyncStatus = "pending"
	StatusActive  SyncStatus = "active"
	StatusSuccess SyncStatus = "success"
	StatusWarning SyncStatus = "warning"
	StatusError   SyncStatus = "error"
	StatusUnknown SyncStatus = "unknown"
)

// ParseSyncStatus maps a raw status string onto a SyncStatus.
func ParseSyncStatus(raw string) SyncStatus {
	switch s := SyncStatus(raw); s {
	case StatusPending, StatusActive, StatusSuccess, StatusWarning, StatusError:
		return s
	default:
		return StatusUnknown
	}
}

// Terminal reports whether polling should stop.
func (s SyncStatus) Terminal() bool {
	return s != StatusPending && s != StatusActive
}

// SyncJob is a submitted sync of an export or import definition.
type SyncJob struct {
	URI               string
	SyncedInstanceURI string
	Status            SyncStatus
}

// CreateSync starts a sync of the export or import at instanceURI.
func (c *Client) CreateSync(ctx context.Context, instanceURI string) (SyncJob, error) {
	body, err := sjson.Set(`{}`, "syncedInstanceUri", instanceURI)
	if err != nil {
		return SyncJob{}, fmt.Errorf("failed to build sync request: %w", err)
	}

	b, err := c.bulk(ctx, "/syncs")
	if err != nil {
		return SyncJob{}, err
	}
	res, err := fetch(ctx, b.BodyBytes([]byte(body)).ContentType("application/json"), "create sync")
	if err != nil {
		return SyncJob{}, err
	}

	job := parseSyncJob(res)
	if job.URI == "" {
		return SyncJob{}, errors.New("failed to create sync: response has no uri")
	}
	if job.SyncedInstanceURI == "" {
		job.SyncedInstanceURI = instanceURI
	}
	return job, nil
}

// GetSync fetches the current state of a sync. The raw status string is
// returned alongside for diagnostics.
func (c *Client) GetSync(ctx context.Context, syncURI string) (SyncJob, string, error) {
	b, err := c.bulk(ctx, syncURI)
	if err != nil {
		return SyncJob{}, "", err
	}
	res, err := fetch(ctx, b, "get sync status")
	if err != nil {
		return SyncJob{}, "", err
	}
	return parseSyncJob(res), res.Get("status").String(), nil
}

// SyncLogs returns the log messages recorded for a sync.
func (c *Client) SyncLogs(ctx context.Context, syncURI string) ([]string, error) {
	b, err := c.bulk(ctx, syncURI+"/logs")
	if err != nil {
		return nil, err
	}
	res, err := fetch(ctx, b, "get sync logs")
	if err != nil {
		return nil, err
	}

	var logs []string
	res.Get("items").ForEach(func(_, item gjson.Result) bool {
		logs = append(logs, fmt.Sprintf("%s %s: %s",
			item.Get("severity").String(),
			item.Get("statusCode").String(),
			item.Get("message").String()))
		return true
	})
	return logs, nil
}

func parseSyncJob(res gjson.Result) SyncJob {
	return SyncJob{
		URI:               res.Get("uri").String(),
		SyncedInstanceURI: res.Get("syncedInstanceUri").String(),
		Status:            ParseSyncStatus(res.Get("status").String()),
	}
}
