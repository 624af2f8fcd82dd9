package repository

import "github.com/okian/matchboard/internal/config"

// Option applies a configuration option to the CardStore.
type Option func(*CardStore)

// WithStatKeys sets the statistic keys of every new card's grid.
func WithStatKeys(keys []string) Option {
	return func(s *CardStore) {
		if len(keys) > 0 {
			s.statKeys = append([]string(nil), keys...)
		}
	}
}

// WithWidgetURL sets the widget template; %d is replaced by the match ID.
func WithWidgetURL(tmpl string) Option {
	return func(s *CardStore) {
		if tmpl != "" {
			s.widgetURL = tmpl
		}
	}
}

func defaultStatKeys() []string {
	return append([]string(nil), config.DefaultStatKeys...)
}
