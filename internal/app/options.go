package service

import (
	"time"

	"github.com/okian/matchboard/internal/adapters/publisher"
	"github.com/okian/matchboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScoresInterval sets the period of the scores tick.
func WithScoresInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.scoresInterval = d
		}
	}
}

// WithStatsInterval sets the period of the stats tick.
func WithStatsInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.statsInterval = d
		}
	}
}

// WithBatchSize sets how many cards the initial render and LoadMore create.
// Zero means every qualifying match.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.batchSize = n
		}
	}
}

// WithAutoAdd makes the scores tick create cards for newly seen matches.
func WithAutoAdd(on bool) Option {
	return func(s *Service) { s.autoAdd = on }
}

// WithRequirements sets which widgets a match must offer to get a card.
func WithRequirements(statistics, heatMap bool) Option {
	return func(s *Service) {
		s.requireStatistics = statistics
		s.requireHeatMap = heatMap
	}
}

// WithWorkerCount sets the number of stats workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the stats job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the number of match IDs remembered as seen.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStatKeys sets the statistic keys every card displays.
func WithStatKeys(keys []string) Option {
	return func(s *Service) {
		if len(keys) > 0 {
			s.statKeys = append([]string(nil), keys...)
		}
	}
}

// WithWidgetURL sets the embedded widget template; %d is the match ID.
func WithWidgetURL(tmpl string) Option {
	return func(s *Service) {
		if tmpl != "" {
			s.widgetURL = tmpl
		}
	}
}

// WithPublisher sets where card events are pushed.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.pub = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
