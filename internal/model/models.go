package model

// All returns every entity in migration order.
func All() []any {
	return []any{
		&Competitor{},
		&Inscription{},
		&InscriptionCompetitor{},
		&InscriptionCoach{},
	}
}
