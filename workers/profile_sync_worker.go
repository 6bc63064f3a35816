// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"sql-career-engine/logger"
	"sql-career-engine/models"
	"sql-career-engine/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const profilesEndpoint = "/api/v1/public/profiles"

// profileChangesResponse is the top-level body of the profile sync service.
type profileChangesResponse struct {
	Users []models.RemoteProfile `json:"users"`
}

// ProfileSyncWorker mirrors usernames and regions from the profile service onto
// players and their leaderboard rows.
type ProfileSyncWorker struct {
	db           *gorm.DB
	board        *services.LeaderboardService
	log          *logger.Logger
	interval     time.Duration
	baseURL      string
	serviceToken string
	httpClient   *http.Client

	mu    sync.Mutex
	since time.Time
}

func NewProfileSyncWorker(db *gorm.DB, board *services.LeaderboardService, baseURL, serviceToken string, interval time.Duration, httpClient *http.Client, log *logger.Logger) *ProfileSyncWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ProfileSyncWorker{
		db:           db,
		board:        board,
		log:          log.With("worker", "ProfileSync"),
		interval:     interval,
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient:   httpClient,
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	w.log.Info("starting profile sync", "url", w.baseURL, "interval", w.interval.String())
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// initial pass backfills from the beginning of time
	if _, err := w.SyncOnce(ctx); err != nil {
		w.log.Warn("initial profile sync failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx); err != nil {
				w.log.Error("profile sync failed", "error", err)
			}
		case <-ctx.Done():
			w.log.Info("profile sync stopped")
			return
		}
	}
}

// Since is the cursor of the next request.
func (w *ProfileSyncWorker) Since() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.since
}

// SyncOnce fetches profile changes since the cursor and applies them. It returns
// the number of profiles applied. The cursor only advances when every row applied.
func (w *ProfileSyncWorker) SyncOnce(ctx context.Context) (int, error) {
	since := w.Since()
	profiles, err := w.fetch(ctx, since)
	if err != nil {
		return 0, err
	}
	if len(profiles) == 0 {
		w.log.Debug("no profile changes", "since", since.Format(time.RFC3339))
		return 0, nil
	}

	var applied, failed int
	latest := since
	for _, p := range profiles {
		if err := w.apply(ctx, p); err != nil {
			failed++
			w.log.Warn("profile upsert failed", "player_id", p.ExternalID, "error", err)
			continue
		}
		applied++
		if p.UpdatedAt.After(latest) {
			latest = p.UpdatedAt
		}
	}

	if failed == 0 {
		w.mu.Lock()
		if latest.After(w.since) {
			w.since = latest
		}
		w.mu.Unlock()
	}
	w.log.Info("profiles synced", "received", len(profiles), "applied", applied, "failed", failed)
	return applied, nil
}

func (w *ProfileSyncWorker) fetch(ctx context.Context, since time.Time) ([]models.RemoteProfile, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sync service URL %q: %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(profilesEndpoint)
	q := endpoint.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sync service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out profileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	return out.Users, nil
}

// apply upserts the player's display fields. Unknown players are created at level 1
// so the first attempt finds them.
func (w *ProfileSyncWorker) apply(ctx context.Context, p models.RemoteProfile) error {
	id := strings.TrimSpace(p.ExternalID)
	if id == "" {
		return fmt.Errorf("profile without external_id")
	}
	player := models.NewPlayer(id, strings.TrimSpace(p.Username), strings.TrimSpace(p.Region))
	err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "region", "updated_at"}),
	}).Create(&player).Error
	if err != nil {
		return err
	}
	return w.board.UpdateProfile(ctx, id, player.Username, player.Region)
}
