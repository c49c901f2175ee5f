package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to requests that do not carry their own
	DefaultRuleset       Ruleset       `json:"default_ruleset"`
	DefaultProduct       Product       `json:"default_product"`
	DefaultFastening     FasteningMode `json:"default_fastening"`
	DefaultBoardWidthMm  float64       `json:"default_board_width_mm"`
	DefaultDirectionsDeg []float64     `json:"default_directions_deg"` // Directions tried by compare

	// Server
	ListenAddr string `json:"listen_addr"`

	RecentPlans []string `json:"recent_plans"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching DefaultRuleset() and DefaultProduct().
func DefaultAppConfig() AppConfig {
	product := DefaultProduct()
	return AppConfig{
		DefaultRuleset:       DefaultRuleset(),
		DefaultProduct:       product,
		DefaultFastening:     FasteningClip,
		DefaultBoardWidthMm:  product.WidthOptionsMm[0],
		DefaultDirectionsDeg: []float64{0, 45, 90},
		ListenAddr:           ":8080",
		RecentPlans:          []string{},
	}
}

// ApplyToPlan fills plan fields the caller left unset.
func (c AppConfig) ApplyToPlan(p *Plan) {
	if p.Unit == "" {
		p.Unit = UnitMM
	}
	if p.BoardWidthMm <= 0 {
		p.BoardWidthMm = c.DefaultBoardWidthMm
	}
}

// maxRecentPlans bounds the RecentPlans list.
const maxRecentPlans = 10

// AddRecentPlan moves path to the front of RecentPlans, dropping duplicates
// and the oldest entries beyond the limit.
func (c *AppConfig) AddRecentPlan(path string) {
	recent := []string{path}
	for _, p := range c.RecentPlans {
		if p != path && len(recent) < maxRecentPlans {
			recent = append(recent, p)
		}
	}
	c.RecentPlans = recent
}

// EstimateRequest is one estimation input as read from a plan file or an
// API body. Product and Ruleset are optional and fall back to the config.
type EstimateRequest struct {
	Name       string        `json:"name,omitempty"`
	Plan       Plan          `json:"plan"`
	Product    *Product      `json:"product,omitempty"`
	Ruleset    *Ruleset      `json:"ruleset,omitempty"`
	Fastening  FasteningMode `json:"fastening,omitempty"`
	Directions []float64     `json:"directions,omitempty"` // Extra directions for comparisons
}

// Resolve returns the request's inputs with every unset part filled from
// the config defaults.
func (c AppConfig) Resolve(req EstimateRequest) (Plan, Product, Ruleset, FasteningMode) {
	plan := req.Plan
	c.ApplyToPlan(&plan)

	product := c.DefaultProduct
	if req.Product != nil {
		product = *req.Product
	}
	ruleset := c.DefaultRuleset
	if req.Ruleset != nil {
		ruleset = *req.Ruleset
	}
	fastening := c.DefaultFastening
	if req.Fastening != "" {
		fastening = req.Fastening
	}
	return plan, product, ruleset, fastening
}
