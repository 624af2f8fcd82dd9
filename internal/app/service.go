// Package service runs the dashboard: it polls the live feed, keeps the match
// and card registries reconciled and exposes the card operations used by the
// HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/okian/matchboard/internal/adapters/mq/queue"
	"github.com/okian/matchboard/internal/adapters/mq/worker"
	"github.com/okian/matchboard/internal/adapters/publisher"
	"github.com/okian/matchboard/internal/adapters/repository"
	"github.com/okian/matchboard/internal/config"
	"github.com/okian/matchboard/internal/domain/dedupe"
	"github.com/okian/matchboard/internal/domain/dragdrop"
	"github.com/okian/matchboard/internal/domain/league"
	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/internal/domain/period"
	"github.com/okian/matchboard/internal/domain/scoreboard"
	"github.com/okian/matchboard/pkg/logger"
	"github.com/okian/matchboard/pkg/metrics"
	"github.com/okian/matchboard/pkg/scheduler"
)

// Scheduler task names.
const (
	TaskScores = "scores"
	TaskStats  = "stats"
)

// errUnchanged aborts a card update that would not change anything.
var errUnchanged = errors.New("card unchanged")

// Upstream is the live data provider.
type Upstream interface {
	LiveMatches(ctx context.Context) ([]model.Match, error)
	Statistics(ctx context.Context, matchID int64, p model.Period) ([]model.StatItem, error)
}

// Service owns the registries and the background loops.
type Service struct {
	mu sync.RWMutex

	upstream Upstream
	matches  repository.Matches
	cards    *repository.CardStore
	tracker  dedupe.Tracker
	drag     *dragdrop.Controller
	jobs     queue.Queue
	pool     *worker.Pool
	sched    *scheduler.Scheduler
	pub      publisher.Publisher

	scoresInterval    time.Duration
	statsInterval     time.Duration
	batchSize         int
	autoAdd           bool
	requireStatistics bool
	requireHeatMap    bool
	workerCount       int
	queueSize         int
	dedupeSize        int
	statKeys          []string
	widgetURL         string

	started bool
	logger  logger.Logger
}

// New constructs a service reading from upstream. The registries exist right
// away; the loops and workers start with Start.
func New(upstream Upstream, opts ...Option) *Service {
	s := &Service{
		upstream:          upstream,
		pub:               publisher.Nop{},
		scoresInterval:    5 * time.Second,
		statsInterval:     30 * time.Second,
		batchSize:         10,
		requireStatistics: true,
		workerCount:       runtime.NumCPU(),
		queueSize:         1024,
		dedupeSize:        10000,
		statKeys:          append([]string(nil), config.DefaultStatKeys...),
		logger:            logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	storeOpts := []repository.Option{repository.WithStatKeys(s.statKeys)}
	if s.widgetURL != "" {
		storeOpts = append(storeOpts, repository.WithWidgetURL(s.widgetURL))
	}
	s.matches = repository.NewMatchStore()
	s.cards = repository.NewCardStore(storeOpts...)
	s.tracker = dedupe.NewInMemoryTracker(dedupe.WithMaxSize(s.dedupeSize))
	s.drag = dragdrop.NewController(s.cards)
	return s
}

// Start renders the first batch of cards, then starts the stats workers and
// both timers. A failing first fetch is logged; the timers start regardless.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting matchboard service...")

	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobs, worker.HandlerFunc(s.handleStatsJob))
	s.pool.Start(ctx)

	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial refresh failed", logger.Error(err))
	}
	created := s.loadMore(ctx)

	s.sched = scheduler.New([]scheduler.Task{
		{Name: TaskScores, Interval: s.scoresInterval, Run: s.ScoresTick},
		{Name: TaskStats, Interval: s.statsInterval, Immediate: true, Run: s.StatsTick},
	},
		scheduler.WithLogger(s.logger.Named("scheduler")),
		scheduler.WithRunHook(recordTick),
	)
	if err := s.sched.Start(ctx); err != nil {
		return errors.Wrap(err, "start scheduler")
	}

	s.started = true
	s.logger.Info(ctx, "matchboard service started",
		logger.Int("cards", len(created)),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Duration("scores_interval", s.scoresInterval),
		logger.Duration("stats_interval", s.statsInterval),
	)
	return nil
}

// Stop cancels both timers and drains the stats workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping matchboard service...")

	s.sched.Stop()
	err := s.pool.Shutdown(ctx)

	s.started = false
	s.logger.Info(ctx, "matchboard service stopped")
	return err
}

func recordTick(name string, took time.Duration, err error) {
	result := "ok"
	switch {
	case errors.Is(err, model.ErrNoLiveMatches):
		result = "empty"
	case err != nil:
		result = "error"
	}
	metrics.RecordTick(name, result, float64(took.Microseconds())/1000)
}

// Refresh fetches the live list and replaces the registry. It returns the
// qualifying matches seen for the first time; a match that does not qualify
// yet is not recorded, so it turns fresh once it does. An empty list still replaces the registry
// and yields ErrNoLiveMatches; a failed fetch leaves the registry untouched.
func (s *Service) Refresh(ctx context.Context) ([]model.Match, error) {
	list, err := s.upstream.LiveMatches(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("scores", "fetch")
		return nil, errors.Wrap(err, "refresh live matches")
	}

	s.matches.Replace(ctx, list)
	metrics.UpdateLiveMatches(s.matches.Count(ctx))

	var fresh []model.Match
	for _, m := range list {
		if !s.qualifies(m) {
			continue
		}
		if !s.tracker.SeenAndRecord(ctx, m.ID) {
			fresh = append(fresh, m)
		}
	}
	metrics.RecordNewMatches(len(fresh))

	if len(list) == 0 {
		return nil, model.ErrNoLiveMatches
	}
	return fresh, nil
}

// ScoresTick refreshes the registry and reconciles every scoreboard against
// it. After an empty list the reconciliation still runs, ending every card.
func (s *Service) ScoresTick(ctx context.Context) error {
	fresh, err := s.Refresh(ctx)
	if err != nil && !errors.Is(err, model.ErrNoLiveMatches) {
		return err
	}

	s.reconcileScores(ctx)
	s.admit(ctx, fresh)
	s.updateCardGauges(ctx)
	return err
}

func (s *Service) reconcileScores(ctx context.Context) {
	for _, c := range s.cards.List(ctx) {
		var rec *model.Match
		if m, err := s.matches.Lookup(ctx, c.MatchID); err == nil {
			rec = &m
		}

		var dec scoreboard.Decision
		card, err := s.cards.Update(ctx, c.MatchID, func(card *model.Card) error {
			dec = scoreboard.Reconcile(card.Scoreboard, card.Ended, rec)
			if !dec.Changed {
				return errUnchanged
			}
			card.Scoreboard, card.Ended = dec.Text, dec.Ended
			return nil
		})
		if err != nil {
			continue
		}

		metrics.RecordScoreboardWrite()
		if dec.Ended {
			metrics.RecordMatchEnded()
			s.logger.Info(ctx, "match ended", logger.Int64("match_id", card.MatchID))
		}
		s.publish(ctx, model.NewCardEvent(model.EventUpdated, card))
	}
}

// admit handles matches seen for the first time: cards are created for them
// when auto-add is on, otherwise renderers are told how many are waiting.
func (s *Service) admit(ctx context.Context, fresh []model.Match) {
	var waiting int
	for _, m := range fresh {
		if !s.qualifies(m) || s.cards.Dismissed(ctx, m.ID) || s.cards.Has(m.ID) {
			continue
		}
		if !s.autoAdd {
			waiting++
			continue
		}
		card, err := s.cards.Create(ctx, m)
		if err != nil {
			continue
		}
		s.publish(ctx, model.NewCardEvent(model.EventCreated, card))
	}

	if waiting > 0 {
		s.logger.Info(ctx, "new matches started", logger.Int("count", waiting))
		ev := model.NewCardsEvent(model.EventNewMatches, nil)
		ev.Count = waiting
		s.publish(ctx, ev)
	}
}

func (s *Service) qualifies(m model.Match) bool {
	if s.requireStatistics && !m.HasStatistics {
		return false
	}
	if s.requireHeatMap && !m.HasHeatMap {
		return false
	}
	return true
}

// PendingMatches counts qualifying matches of the registry that have no card
// and were not dismissed.
func (s *Service) PendingMatches(ctx context.Context) int {
	n := 0
	for _, m := range s.matches.List(ctx) {
		if s.qualifies(m) && !s.cards.Has(m.ID) && !s.cards.Dismissed(ctx, m.ID) {
			n++
		}
	}
	return n
}

// LoadMore creates the next batch of cards in registry order.
func (s *Service) LoadMore(ctx context.Context) []model.Card {
	created := s.loadMore(ctx)
	s.updateCardGauges(ctx)
	return created
}

func (s *Service) loadMore(ctx context.Context) []model.Card {
	var created []model.Card
	for _, m := range s.matches.List(ctx) {
		if s.batchSize > 0 && len(created) >= s.batchSize {
			break
		}
		if !s.qualifies(m) || s.cards.Has(m.ID) {
			continue
		}
		card, err := s.cards.Create(ctx, m)
		if err != nil {
			continue
		}
		created = append(created, card)
		s.publish(ctx, model.NewCardEvent(model.EventCreated, card))
	}
	return created
}

// StatsTick queues one stats job per card whose previous fetch has finished.
// Hidden cards are included.
func (s *Service) StatsTick(ctx context.Context) error {
	tickID := uuid.NewString()
	var rejected int
	var firstErr error

	for _, c := range s.cards.List(ctx) {
		p, err := s.cards.BeginFetch(ctx, c.MatchID)
		if err != nil {
			continue
		}
		err = s.jobs.Enqueue(ctx, queue.Job{MatchID: c.MatchID, Period: p, TickID: tickID, EnqueuedAt: time.Now()})
		if err != nil {
			s.cards.EndFetch(ctx, c.MatchID)
			rejected++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if rejected > 0 {
		return errors.Wrapf(firstErr, "%d stats jobs rejected", rejected)
	}
	return nil
}

func (s *Service) handleStatsJob(ctx context.Context, job queue.Job) error {
	defer s.cards.EndFetch(ctx, job.MatchID)
	return s.fetchStats(ctx, job.MatchID, job.Period)
}

// fetchStats fetches p for a card and patches the grid. Results for a period
// the card has left since are discarded.
func (s *Service) fetchStats(ctx context.Context, id int64, p model.Period) error {
	items, err := s.upstream.Statistics(ctx, id, p)
	if err != nil {
		metrics.RecordStatsFetchError()
		return err
	}

	card, n, applied, err := s.cards.PatchStats(ctx, id, p, items)
	switch {
	case errors.Is(err, repository.ErrCardNotFound):
		return nil
	case err != nil:
		return err
	case !applied:
		s.logger.Debug(ctx, "discarding stats of a stale period",
			logger.Int64("match_id", id),
			logger.String("period", p.String()),
		)
		return nil
	}

	if n > 0 {
		metrics.RecordStatsPatches(n)
		s.publish(ctx, model.NewCardEvent(model.EventUpdated, card))
	}
	return nil
}

// SelectPeriod switches a card to the named period and fetches it right away.
// It fails with period.ErrFetchInFlight while another fetch for the card runs.
// A failed fetch keeps the placeholders and is only logged.
func (s *Service) SelectPeriod(ctx context.Context, id int64, name string) (model.Card, error) {
	p, err := period.Parse(name)
	if err != nil {
		return model.Card{}, err
	}

	card, err := s.cards.Update(ctx, id, func(c *model.Card) error {
		due, err := period.Select(c, p)
		if err != nil {
			return err
		}
		c.Fetching = due
		return nil
	})
	if err != nil {
		return model.Card{}, err
	}
	metrics.RecordPeriodSwitch(p.String())
	s.publish(ctx, model.NewCardEvent(model.EventUpdated, card))

	ferr := s.fetchStats(ctx, id, p)
	s.cards.EndFetch(ctx, id)
	if ferr != nil {
		s.logger.Warn(ctx, "period stats fetch failed",
			logger.Int64("match_id", id),
			logger.String("period", p.String()),
			logger.Error(ferr),
		)
	}
	return s.cards.Get(ctx, id)
}

// RemoveCard closes a card. Its match never gets a card again.
func (s *Service) RemoveCard(ctx context.Context, id int64) error {
	if err := s.cards.Remove(ctx, id); err != nil {
		return err
	}
	if src, ok := s.drag.Source(); ok && src == id {
		s.drag.End()
	}
	s.publish(ctx, model.CardEvent{Type: model.EventRemoved, MatchID: id, At: time.Now()})
	s.updateCardGauges(ctx)
	return nil
}

// ToggleSelected flips the highlight of a card.
func (s *Service) ToggleSelected(ctx context.Context, id int64) (model.Card, error) {
	card, err := s.cards.Update(ctx, id, func(c *model.Card) error {
		c.Selected = !c.Selected
		return nil
	})
	if err != nil {
		return model.Card{}, err
	}
	s.publish(ctx, model.NewCardEvent(model.EventUpdated, card))
	return card, nil
}

// Swap exchanges the payloads of two cards; slot order stays.
func (s *Service) Swap(ctx context.Context, a, b int64) error {
	if err := s.cards.Swap(a, b); err != nil {
		return err
	}
	if a != b {
		s.swapped(ctx, a, b)
	}
	return nil
}

func (s *Service) swapped(ctx context.Context, a, b int64) {
	metrics.RecordCardSwap()
	var pair []model.Card
	for _, id := range []int64{a, b} {
		if c, err := s.cards.Get(ctx, id); err == nil {
			pair = append(pair, c)
		}
	}
	s.publish(ctx, model.NewCardsEvent(model.EventSwapped, pair))
}

// DragStart begins a drag of id.
func (s *Service) DragStart(ctx context.Context, id int64) error {
	if err := s.drag.Start(id); err != nil {
		return err
	}
	s.publish(ctx, s.Snapshot(ctx))
	return nil
}

// DragEnter highlights id when it is a valid drop target.
func (s *Service) DragEnter(ctx context.Context, id int64) (bool, error) {
	return s.dragHover(ctx, id, s.drag.Enter)
}

// DragLeave clears the highlight of id.
func (s *Service) DragLeave(ctx context.Context, id int64) (bool, error) {
	return s.dragHover(ctx, id, s.drag.Leave)
}

func (s *Service) dragHover(ctx context.Context, id int64, fn func(int64) (bool, error)) (bool, error) {
	ok, err := fn(id)
	if err != nil || !ok {
		return ok, err
	}
	if c, err := s.cards.Get(ctx, id); err == nil {
		s.publish(ctx, model.NewCardEvent(model.EventUpdated, c))
	}
	return true, nil
}

// DragDrop swaps the drag source with target and ends the drag.
func (s *Service) DragDrop(ctx context.Context, target int64) (bool, error) {
	src, _ := s.drag.Source()
	ok, err := s.drag.Drop(target)
	if err != nil {
		return false, err
	}
	if ok {
		s.swapped(ctx, src, target)
	}
	s.publish(ctx, s.Snapshot(ctx))
	return ok, nil
}

// DragEnd ends the drag without swapping.
func (s *Service) DragEnd(ctx context.Context) {
	s.drag.End()
	s.publish(ctx, s.Snapshot(ctx))
}

// ApplyFilter shows only the cards of a league, or every card for league.All,
// and returns the shown cards.
func (s *Service) ApplyFilter(ctx context.Context, name string) []model.Card {
	shown := s.cards.ApplyFilter(ctx, name)
	s.publish(ctx, model.NewCardsEvent(model.EventFiltered, shown))
	s.updateCardGauges(ctx)
	return shown
}

// Filter returns the active league filter.
func (s *Service) Filter(ctx context.Context) string {
	return s.cards.Filter(ctx)
}

// Leagues lists the selector options: league.All followed by the distinct
// leagues of the registry.
func (s *Service) Leagues(ctx context.Context) []string {
	return append([]string{league.All}, s.matches.Leagues(ctx)...)
}

// Cards returns every card in slot order.
func (s *Service) Cards(ctx context.Context) []model.Card {
	return s.cards.List(ctx)
}

// Card returns one card or repository.ErrCardNotFound.
func (s *Service) Card(ctx context.Context, id int64) (model.Card, error) {
	return s.cards.Get(ctx, id)
}

// Matches returns the registry in upstream order.
func (s *Service) Matches(ctx context.Context) []model.Match {
	return s.matches.List(ctx)
}

// Snapshot is the full board as one event.
func (s *Service) Snapshot(ctx context.Context) model.CardEvent {
	return model.NewCardsEvent(model.EventSnapshot, s.cards.List(ctx))
}

func (s *Service) publish(ctx context.Context, ev model.CardEvent) {
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.logger.Warn(ctx, "publish card event failed",
			logger.String("type", string(ev.Type)),
			logger.Error(err),
		)
	}
}

func (s *Service) updateCardGauges(ctx context.Context) {
	total, visible := s.cards.Count(ctx)
	metrics.UpdateCards(total, visible)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	total, visible := s.cards.Count(ctx)
	stats := map[string]any{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"liveMatches":    s.matches.Count(ctx),
		"cards":          total,
		"visibleCards":   visible,
		"pendingMatches": s.PendingMatches(ctx),
		"seenMatches":    s.tracker.Size(),
		"filter":         s.cards.Filter(ctx),
		"refreshedAt":    s.matches.RefreshedAt(),
	}
	if s.started {
		stats["queueLength"] = s.jobs.Len(ctx)
		stats["schedulerRunning"] = s.sched.Running()
	}
	return stats
}
