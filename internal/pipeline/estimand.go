package pipeline

// EstimandKind tags the identification strategy of an IdentifiedEstimand.
// Estimate dispatches on this tag alone.
type EstimandKind string

const (
	EstimandBackdoor     EstimandKind = "backdoor"
	EstimandFrontdoor    EstimandKind = "frontdoor"
	EstimandInstrumental EstimandKind = "instrumental_variable"
)

// IdentifiedEstimand is the product of Identify: the strategy kind plus the
// variable set that strategy needs. Exactly one of Adjustment, Mediator,
// Instrument is populated, matching Kind.
type IdentifiedEstimand struct {
	Kind      EstimandKind `json:"kind"`
	Treatment string       `json:"treatment"`
	Outcome   string       `json:"outcome"`

	Adjustment []string `json:"adjustment,omitempty"`
	Mediator   string   `json:"mediator,omitempty"`
	Instrument string   `json:"instrument,omitempty"`
}
