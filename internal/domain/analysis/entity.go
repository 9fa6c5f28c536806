package analysis

import "time"

// Token is the opaque per-analysis identifier. It doubles as the capability
// a client presents to unlock the paid result.
type Token string

// Clause is one classified clause: short title plus short summary.
type Clause struct {
	Title   string `json:"titulo" bson:"titulo"`
	Summary string `json:"resumo" bson:"resumo"`
}

// Aggregate Root: one Analysis per uploaded document, keyed by token.
// paid only ever transitions false -> true; records are never deleted.
type Analysis struct {
	Token          Token     `json:"token" bson:"token"`
	UID            string    `json:"uid" bson:"uid"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	ClauseText     string    `json:"clausulas" bson:"clausulas"`
	SafeClauses    []Clause  `json:"seguras" bson:"seguras"`
	RiskyClauses   []Clause  `json:"riscos" bson:"riscos"`
	Recommendation string    `json:"recomendacao" bson:"recomendacao"`
	Paid           bool      `json:"paid" bson:"paid"`
	SessionID      string    `json:"sessionId,omitempty" bson:"sessionId,omitempty"`
}
