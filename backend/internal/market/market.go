// Package market fetches market snapshots from public exchange and
// aggregator APIs and normalizes them into models.Crypto records.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/user/carbontracker/backend/internal/models"
)

const (
	userAgent = "Crypto Carbon Tracker/1.0"
	// maxBody bounds upstream responses; the full exchange ticker is a few MB.
	maxBody = 32 << 20
)

// Source produces a market snapshot. Snapshot never fails: upstream errors
// are replaced by fallback data.
type Source interface {
	Name() string
	Snapshot(ctx context.Context) []models.Crypto
}

// getJSON GETs addr and decodes the JSON body into data. Any non 200
// status is an error.
func getJSON(ctx context.Context, client *http.Client, addr string, data interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-store")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	return json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(data)
}
