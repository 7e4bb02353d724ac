// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/internal/logging"
	"github.com/storely/meetgate/internal/metrics"
	"github.com/storely/meetgate/pkg/concurrent"
)

// Resolution source names, also used as metric labels.
const (
	ResolutionSourceDB          = "db"
	ResolutionSourceSuppressed  = "suppressed"
	ResolutionSourceFixed       = "fixed"
	ResolutionSourceOwnLive     = "own_live"
	ResolutionSourceAccountScan = "account_scan"
	ResolutionSourceNone        = "none"
)

// ResolveQuery is the shared state handed to each resolver strategy.
type ResolveQuery struct {
	TenantID string
	Settings *models.TenantSettings
	Now      time.Time
	// Records are the tenant's webhook-derived status records, loaded once
	// before any strategy runs. Empty when the store had nothing or failed.
	Records []*models.MeetingStatusRecord
}

// ResolverStrategy is one layer of the live-meeting resolution chain. A
// strategy either answers (done=true, meeting possibly nil) or passes.
type ResolverStrategy interface {
	Name() string
	TryResolve(ctx context.Context, q *ResolveQuery) (meeting *models.LiveMeeting, done bool, err error)
}

// LiveStatusService resolves whether a tenant currently has a live meeting.
// Strategies run in a fixed order and the first one that answers wins, so
// cheap local layers shield the provider API from storefront polling.
type LiveStatusService struct {
	SettingsService  *SettingsService
	StatusRepository domain.MeetingStatusRepository
	Strategies       []ResolverStrategy
}

// NewLiveStatusService creates the resolver with the default strategy chain.
func NewLiveStatusService(
	settingsService *SettingsService,
	statusRepository domain.MeetingStatusRepository,
	provider domain.MeetingProvider,
	config ServiceConfig,
) *LiveStatusService {
	window := config.EndedSuppressionWindow
	if window <= 0 {
		window = DefaultEndedSuppressionWindow
	}

	return &LiveStatusService{
		SettingsService:  settingsService,
		StatusRepository: statusRepository,
		Strategies: []ResolverStrategy{
			&dbRecordStrategy{},
			&recentlyEndedStrategy{window: window},
			&fixedMeetingStrategy{provider: provider},
			&ownLiveListingStrategy{provider: provider},
			&accountScanStrategy{provider: provider, pool: concurrent.NewWorkerPool(5)},
		},
	}
}

// ServiceReady checks if the service is ready for use.
func (s *LiveStatusService) ServiceReady() bool {
	return s.SettingsService != nil && s.StatusRepository != nil && len(s.Strategies) > 0
}

// GetLiveMeeting resolves the tenant's current live meeting, or nil when no
// meeting is live. The source string names the layer that answered.
func (s *LiveStatusService) GetLiveMeeting(ctx context.Context, tenantID string) (*models.LiveMeeting, string, error) {
	settings := s.SettingsService.GetSettings(ctx, tenantID)
	if !settings.Configured() {
		return nil, ResolutionSourceNone, domain.NewCredentialsMissingError(tenantID)
	}

	q := &ResolveQuery{
		TenantID: tenantID,
		Settings: settings,
		Now:      time.Now().UTC(),
		Records:  s.loadRecords(ctx, settings.AccountID),
	}

	for _, strategy := range s.Strategies {
		meeting, done, err := strategy.TryResolve(ctx, q)
		if err != nil {
			// A failed layer is skipped, not fatal: the next layer may still
			// answer from a different source.
			slog.WarnContext(ctx, "live resolution layer failed, trying next",
				logging.ErrKey, err, "layer", strategy.Name(), "tenant_id", tenantID)
			continue
		}
		if done {
			metrics.LiveResolutions.WithLabelValues(strategy.Name()).Inc()
			slog.DebugContext(ctx, "live meeting resolved",
				"layer", strategy.Name(), "tenant_id", tenantID, "live", meeting != nil)
			return meeting, strategy.Name(), nil
		}
	}

	metrics.LiveResolutions.WithLabelValues(ResolutionSourceNone).Inc()
	return nil, ResolutionSourceNone, nil
}

// loadRecords fetches the tenant's status records once for the whole chain.
// Store failures degrade to an empty set.
func (s *LiveStatusService) loadRecords(ctx context.Context, accountID string) []*models.MeetingStatusRecord {
	if accountID == "" {
		return nil
	}
	records, err := s.StatusRepository.ListByAccountID(ctx, accountID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load meeting status records",
			logging.ErrKey, err, "account_id", models.MaskString(accountID))
		return nil
	}
	return records
}

// dbRecordStrategy answers from webhook-derived records. A live record is
// trusted unconditionally: webhooks are the freshest signal we have.
type dbRecordStrategy struct{}

func (st *dbRecordStrategy) Name() string { return ResolutionSourceDB }

func (st *dbRecordStrategy) TryResolve(_ context.Context, q *ResolveQuery) (*models.LiveMeeting, bool, error) {
	live := make([]*models.MeetingStatusRecord, 0, len(q.Records))
	for _, record := range q.Records {
		if record.Live() {
			live = append(live, record)
		}
	}
	if len(live) == 0 {
		return nil, false, nil
	}

	// A record for the tenant's fixed meeting beats everything else.
	if q.Settings.FixedMeetingID != "" {
		for _, record := range live {
			if record.MeetingID == q.Settings.FixedMeetingID {
				return recordToLiveMeeting(record), true, nil
			}
		}
	}

	sort.Slice(live, func(i, j int) bool {
		ti := time.Time{}
		if live[i].StartedAt != nil {
			ti = *live[i].StartedAt
		}
		tj := time.Time{}
		if live[j].StartedAt != nil {
			tj = *live[j].StartedAt
		}
		return ti.After(tj)
	})

	return recordToLiveMeeting(live[0]), true, nil
}

// recentlyEndedStrategy suppresses provider lookups for a short window after
// a meeting ends. Provider listings lag behind webhooks, so without this the
// chain would briefly resurrect a meeting that just ended.
type recentlyEndedStrategy struct {
	window time.Duration
}

func (st *recentlyEndedStrategy) Name() string { return ResolutionSourceSuppressed }

func (st *recentlyEndedStrategy) TryResolve(_ context.Context, q *ResolveQuery) (*models.LiveMeeting, bool, error) {
	for _, record := range q.Records {
		if record.EndedWithin(st.window, q.Now) {
			return nil, true, nil
		}
	}
	return nil, false, nil
}

// fixedMeetingStrategy queries the tenant's fixed meeting directly. A
// "started" status on a permanent meeting is only believed when the live
// listing corroborates it; fixed meetings report stale status on their own.
type fixedMeetingStrategy struct {
	provider domain.MeetingProvider
}

func (st *fixedMeetingStrategy) Name() string { return ResolutionSourceFixed }

func (st *fixedMeetingStrategy) TryResolve(ctx context.Context, q *ResolveQuery) (*models.LiveMeeting, bool, error) {
	if q.Settings.FixedMeetingID == "" {
		return nil, false, nil
	}

	meeting, err := st.provider.GetMeeting(ctx, q.TenantID, q.Settings.FixedMeetingID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	if meeting.Status != models.MeetingStatusStarted {
		return nil, false, nil
	}

	liveListing, err := st.provider.ListLiveMeetings(ctx, q.TenantID)
	if err != nil {
		return nil, false, err
	}
	for _, live := range liveListing {
		if live.ID == meeting.ID {
			return providerToLiveMeeting(meeting), true, nil
		}
	}

	return nil, false, nil
}

// ownLiveListingStrategy lists the account owner's live meetings, preferring
// the fixed meeting when it appears.
type ownLiveListingStrategy struct {
	provider domain.MeetingProvider
}

func (st *ownLiveListingStrategy) Name() string { return ResolutionSourceOwnLive }

func (st *ownLiveListingStrategy) TryResolve(ctx context.Context, q *ResolveQuery) (*models.LiveMeeting, bool, error) {
	liveListing, err := st.provider.ListLiveMeetings(ctx, q.TenantID)
	if err != nil {
		return nil, false, err
	}
	if len(liveListing) == 0 {
		return nil, false, nil
	}

	if q.Settings.FixedMeetingID != "" {
		for i := range liveListing {
			if liveListing[i].ID == q.Settings.FixedMeetingID {
				return providerToLiveMeeting(&liveListing[i]), true, nil
			}
		}
	}

	return providerToLiveMeeting(&liveListing[0]), true, nil
}

// errLiveMeetingFound cancels the account fan-out once any worker has an
// answer.
var errLiveMeetingFound = errors.New("live meeting found")

// accountScanStrategy fans out over the account's members looking for any
// live meeting. This is the most expensive layer and only runs when every
// cheaper one passed.
type accountScanStrategy struct {
	provider domain.MeetingProvider
	pool     *concurrent.WorkerPool
}

func (st *accountScanStrategy) Name() string { return ResolutionSourceAccountScan }

func (st *accountScanStrategy) TryResolve(ctx context.Context, q *ResolveQuery) (*models.LiveMeeting, bool, error) {
	users, err := st.provider.ListAccountUsers(ctx, q.TenantID)
	if err != nil {
		return nil, false, err
	}

	var (
		mu    sync.Mutex
		found *models.LiveMeeting
	)

	functions := make([]func() error, 0, len(users))
	for _, user := range users {
		functions = append(functions, func() error {
			liveListing, err := st.provider.ListLiveMeetingsForUser(ctx, q.TenantID, user.ID)
			if err != nil {
				// One member failing must not sink the whole scan.
				slog.WarnContext(ctx, "live listing for account member failed",
					logging.ErrKey, err, "tenant_id", q.TenantID)
				return nil
			}
			if len(liveListing) == 0 {
				return nil
			}

			mu.Lock()
			if found == nil {
				found = providerToLiveMeeting(&liveListing[0])
			}
			mu.Unlock()
			return errLiveMeetingFound
		})
	}

	if err := st.pool.Run(ctx, functions...); err != nil && !errors.Is(err, errLiveMeetingFound) {
		return nil, false, err
	}

	if found != nil {
		return found, true, nil
	}
	return nil, false, nil
}

func recordToLiveMeeting(record *models.MeetingStatusRecord) *models.LiveMeeting {
	return &models.LiveMeeting{
		ID:       record.MeetingID,
		Topic:    record.Topic,
		Password: record.Password,
	}
}

func providerToLiveMeeting(meeting *domain.ProviderMeeting) *models.LiveMeeting {
	return &models.LiveMeeting{
		ID:       meeting.ID,
		Topic:    meeting.Topic,
		Password: meeting.Password,
	}
}
