package core

// Counts holds the trial classifications accumulated by one estimate.
// 0 <= XGivenY <= YObserved <= Runs at every step of the sampling loop.
type Counts struct {
	Runs      int `json:"runs" yaml:"runs"`
	YObserved int `json:"y_observed" yaml:"y_observed"`
	XGivenY   int `json:"x_given_y" yaml:"x_given_y"`
}
