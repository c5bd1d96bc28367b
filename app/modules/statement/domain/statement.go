package statementdomain

// Statement is a factual claim teams decide on. Position is its index in the
// play order and drives decider rotation.
type Statement struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Topic      string `json:"topic"`
	TruthLabel string `json:"truthLabel"`
	Position   int    `json:"position"`
}
