package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/bikepulse/bikepulse/internal/availability"
	"github.com/bikepulse/bikepulse/internal/jcdecaux"
	"github.com/bikepulse/bikepulse/internal/station"
)

const meterName = "github.com/bikepulse/bikepulse/internal/poller"

// Source is the snapshot source the poller samples once per cycle. It returns
// the verbatim response body alongside the decoded per-station records.
type Source interface {
	FetchStations(ctx context.Context) ([]byte, []*jcdecaux.StationStatus, error)
}

// PollerConfig holds the collaborators for creating a Poller. All state is
// passed in explicitly so independent test instances never share globals.
type PollerConfig struct {
	Config    Config
	Source    Source
	Stations  station.Repository
	Snapshots availability.Repository
	Audit     AuditWriter
	Logger    zerolog.Logger
}

// Poller drives the fixed-cadence, bounded-duration ingestion loop. It is the
// sole writer of availability snapshots; no cycle's failure affects another.
type Poller struct {
	config    Config
	source    Source
	stations  station.Repository
	snapshots availability.Repository
	audit     AuditWriter
	logger    zerolog.Logger

	// seen tracks station IDs already upserted this run, so the reference
	// table is written lazily, once per newly observed station.
	seen map[int64]bool

	metrics *cycleMetrics

	mu        sync.Mutex
	lastCycle CycleResult
}

// CycleResult summarizes the most recent cycle for the health endpoint.
type CycleResult struct {
	StartedAt  time.Time
	Stations   int
	Written    int
	Duplicates int
	Err        error
}

// cycleMetrics holds the OpenTelemetry instruments for the ingestion loop.
type cycleMetrics struct {
	cyclesTotal       metric.Int64Counter
	cyclesFailed      metric.Int64Counter
	snapshotsWritten  metric.Int64Counter
	duplicatesSkipped metric.Int64Counter
}

func newCycleMetrics() (*cycleMetrics, error) {
	meter := otel.Meter(meterName)

	cyclesTotal, err := meter.Int64Counter(
		"poller.cycles.total",
		metric.WithDescription("Total number of poll cycles attempted"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	cyclesFailed, err := meter.Int64Counter(
		"poller.cycles.failed",
		metric.WithDescription("Poll cycles that produced no snapshots"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	snapshotsWritten, err := meter.Int64Counter(
		"poller.snapshots.written",
		metric.WithDescription("Availability snapshots persisted"),
		metric.WithUnit("{snapshot}"),
	)
	if err != nil {
		return nil, err
	}

	duplicatesSkipped, err := meter.Int64Counter(
		"poller.snapshots.duplicates",
		metric.WithDescription("Snapshot writes skipped due to an existing (station, time) key"),
		metric.WithUnit("{snapshot}"),
	)
	if err != nil {
		return nil, err
	}

	return &cycleMetrics{
		cyclesTotal:       cyclesTotal,
		cyclesFailed:      cyclesFailed,
		snapshotsWritten:  snapshotsWritten,
		duplicatesSkipped: duplicatesSkipped,
	}, nil
}

// New creates a poller from explicit collaborators.
func New(cfg PollerConfig) (*Poller, error) {
	metrics, err := newCycleMetrics()
	if err != nil {
		return nil, err
	}

	audit := cfg.Audit
	if audit == nil {
		audit = NopAuditWriter{}
	}

	return &Poller{
		config:    cfg.Config.withDefaults(),
		source:    cfg.Source,
		stations:  cfg.Stations,
		snapshots: cfg.Snapshots,
		audit:     audit,
		logger:    cfg.Logger,
		seen:      make(map[int64]bool),
		metrics:   metrics,
	}, nil
}

// Run executes the ingestion loop: one cycle immediately, then one per
// interval edge, until the wall-clock deadline derived from RunDuration
// passes or ctx is cancelled. Every cycle failure is logged and absorbed;
// only the deadline or cancellation stops the loop.
func (p *Poller) Run(ctx context.Context) error {
	deadline := time.Now().Add(p.config.RunDuration)
	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	p.logger.Info().
		Dur("interval", p.config.Interval).
		Time("deadline", deadline).
		Msg("poller started")

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.cycle(runCtx)

	for {
		select {
		case <-runCtx.Done():
			// External cancellation is reported; reaching the deadline is a
			// normal completion.
			if err := ctx.Err(); err != nil {
				p.logger.Info().Msg("poller cancelled")
				return err
			}
			p.logger.Info().Msg("poller reached deadline")
			return nil
		case <-ticker.C:
			p.cycle(runCtx)
		}
	}
}

// LastCycle returns a snapshot of the most recent cycle result.
func (p *Poller) LastCycle() CycleResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCycle
}

// cycle performs one fetch-archive-persist pass.
func (p *Poller) cycle(ctx context.Context) {
	start := time.Now().UTC()
	// Second resolution matches the audit file names; two cycles resolving to
	// the same second surface as duplicate keys and are skipped.
	snapshotTime := start.Truncate(time.Second)

	p.metrics.cyclesTotal.Add(ctx, 1)

	result := CycleResult{StartedAt: start}
	defer func() {
		p.mu.Lock()
		p.lastCycle = result
		p.mu.Unlock()
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	defer cancel()

	raw, statuses, err := p.source.FetchStations(fetchCtx)
	if err != nil {
		result.Err = err
		p.metrics.cyclesFailed.Add(ctx, 1)
		p.logger.Warn().Err(err).Msg("cycle skipped: fetch failed")
		return
	}
	result.Stations = len(statuses)

	if err := p.audit.Write(start, raw); err != nil {
		// The structured write still proceeds; only the archive is missing.
		p.logger.Error().Err(err).Msg("audit write failed")
	}

	for _, status := range statuses {
		if err := p.persist(ctx, status, snapshotTime, &result); err != nil {
			p.logger.Error().
				Err(err).
				Int64("station", status.Station.ID).
				Msg("snapshot write failed")
		}
	}

	p.logger.Info().
		Int("stations", result.Stations).
		Int("written", result.Written).
		Int("duplicates", result.Duplicates).
		Dur("duration", time.Since(start)).
		Msg("cycle completed")
}

// persist writes one station's reference row (first sight only) and snapshot.
func (p *Poller) persist(ctx context.Context, status *jcdecaux.StationStatus, snapshotTime time.Time, result *CycleResult) error {
	if !p.seen[status.Station.ID] {
		if err := p.stations.Upsert(ctx, &status.Station); err != nil {
			// The snapshot is still worth keeping; retry the reference row on
			// the next sighting.
			p.logger.Error().
				Err(err).
				Int64("station", status.Station.ID).
				Msg("station upsert failed")
		} else {
			p.seen[status.Station.ID] = true
		}
	}

	snap := &availability.Snapshot{
		StationID:           status.Station.ID,
		SnapshotTime:        snapshotTime,
		BikeStands:          status.BikeStands,
		AvailableBikeStands: status.AvailableBikeStands,
		AvailableBikes:      status.AvailableBikes,
		Status:              status.Status,
		LastUpdate:          status.LastUpdate,
	}

	err := p.snapshots.Insert(ctx, snap)
	switch {
	case err == nil:
		result.Written++
		p.metrics.snapshotsWritten.Add(ctx, 1)
		return nil
	case errors.Is(err, availability.ErrDuplicateSnapshot):
		result.Duplicates++
		p.metrics.duplicatesSkipped.Add(ctx, 1)
		p.logger.Debug().
			Int64("station", status.Station.ID).
			Time("snapshot_time", snapshotTime).
			Msg("duplicate snapshot skipped")
		return nil
	default:
		return err
	}
}
