package api

import "github.com/okian/matchboard/internal/domain/model"

type periodRequest struct {
	Period string `json:"period" validate:"required,max=8"`
}

type swapRequest struct {
	Source int64 `json:"source" validate:"required,gt=0"`
	Target int64 `json:"target" validate:"required,gt=0"`
}

type dragRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type filterRequest struct {
	League string `json:"league" validate:"required,max=200"`
}

type cardsResponse struct {
	Cards  []model.Card `json:"cards"`
	Count  int          `json:"count"`
	Filter string       `json:"filter,omitempty"`
}

type dragResponse struct {
	Applied bool `json:"applied"`
}

type leaguesResponse struct {
	Leagues []string `json:"leagues"`
	Active  string   `json:"active"`
}

type matchesResponse struct {
	Matches []model.Match `json:"matches"`
	Count   int           `json:"count"`
}

func newCardsResponse(cards []model.Card, filter string) cardsResponse {
	if cards == nil {
		cards = []model.Card{}
	}
	return cardsResponse{Cards: cards, Count: len(cards), Filter: filter}
}
