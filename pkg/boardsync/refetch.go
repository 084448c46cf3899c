package boardsync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
)

// RefetchFunc fetches the full board through a synchronous read path,
// typically the REST API.
type RefetchFunc func(ctx context.Context) (v1.Board, error)

// HTTPRefetch returns a RefetchFunc that GETs the board from the server's
// REST API. baseURL is the server root, e.g. "http://127.0.0.1:8080".
func HTTPRefetch(baseURL string) RefetchFunc {
	client := &http.Client{Timeout: 10 * time.Second}
	url := baseURL + "/api/v1/board"

	return func(ctx context.Context) (v1.Board, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return v1.Board{}, fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return v1.Board{}, fmt.Errorf("fetch board: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return v1.Board{}, fmt.Errorf("fetch board: unexpected status %d", resp.StatusCode)
		}

		var board v1.Board
		if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
			return v1.Board{}, fmt.Errorf("decode board: %w", err)
		}
		return board, nil
	}
}
