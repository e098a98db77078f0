package watchlist

// Watchlist is a named set of symbols scored together
type Watchlist struct {
	Name     string   `yaml:"name" json:"name"`
	Days     int      `yaml:"days" json:"days"`         // trading days with data per symbol
	Parallel int      `yaml:"parallel" json:"parallel"` // 0 = caller default
	Symbols  []string `yaml:"symbols" json:"symbols"`
}
