package model

// EventData the FIS event document stored on an inscription.
type EventData struct {
	Place           string        `json:"place"`
	PlaceNationCode string        `json:"placeNationCode"`
	StartDate       string        `json:"startDate"` // YYYY-MM-DD
	EndDate         string        `json:"endDate"`
	Competitions    []Competition `json:"competitions"`
}

// Competition one race of the event, identified by its codex.
type Competition struct {
	Codex       string `json:"codex"`
	Date        string `json:"date"`
	Discipline  string `json:"discipline"` // SL, GS, SG, DH, AC
	Category    string `json:"category"`   // FIS, NJR, CIT, ...
	Gender      string `json:"gender"`     // M or W
	Description string `json:"description,omitempty"`
}

// Competition returns the competition with the given codex, if any.
func (e *EventData) Competition(codex string) (Competition, bool) {
	for _, c := range e.Competitions {
		if c.Codex == codex {
			return c, true
		}
	}
	return Competition{}, false
}

// CompetitionsFor filters competitions by gender. An empty gender returns all of them.
func (e *EventData) CompetitionsFor(gender string) []Competition {
	if gender == "" {
		return e.Competitions
	}
	out := make([]Competition, 0, len(e.Competitions))
	for _, c := range e.Competitions {
		if c.Gender == gender {
			out = append(out, c)
		}
	}
	return out
}
