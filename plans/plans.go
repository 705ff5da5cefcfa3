package plans

// Plan is one coaching tier. AmountUSD is in cents, AmountDZD in whole
// dinars — the regional gateway bills whole-unit DZD.
type Plan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AmountUSD   int64  `json:"amount_usd"`
	AmountDZD   int64  `json:"amount_dzd"`
	Description string `json:"description"`
}

var catalog = map[string]Plan{
	"basic": {
		ID:          "basic",
		Name:        "GET STARTED — Basic Coaching",
		AmountUSD:   14900,
		AmountDZD:   20000,
		Description: "Monthly basic coaching subscription",
	},
	"pro": {
		ID:          "pro",
		Name:        "ELITE LEVEL — Pro Coaching",
		AmountUSD:   29900,
		AmountDZD:   40000,
		Description: "Monthly pro coaching subscription",
	},
	"premium": {
		ID:          "premium",
		Name:        "CONTEST PREP — Premium Coaching",
		AmountUSD:   59900,
		AmountDZD:   80000,
		Description: "Monthly premium coaching subscription",
	},
}

// Lookup returns the plan for id, or ok=false for an unknown id.
func Lookup(id string) (Plan, bool) {
	p, ok := catalog[id]
	return p, ok
}

// Name returns the display name for id, falling back to the raw id so
// emails built from an unrecognized metadata value still read sensibly.
func Name(id string) string {
	if p, ok := catalog[id]; ok {
		return p.Name
	}
	return id
}
