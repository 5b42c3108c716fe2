package conformance

// Suite represents a complete YAML test file.
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Tests       []Case `yaml:"tests"`

	// File is the path the suite was loaded from (set at load time).
	File string `yaml:"-"`
}

// Case is a single expression and its expected outcome. Exactly one of Want
// and Error is set.
type Case struct {
	Name  string      `yaml:"name"`
	Expr  string      `yaml:"expr"`
	Want  *int        `yaml:"want,omitempty"`
	Error string      `yaml:"error,omitempty"` // error kind, e.g. DivisionByZero
	Skip  interface{} `yaml:"skip,omitempty"`  // bool or string
}

// IsSkipped returns true if this case should be skipped, with a reason.
func (c *Case) IsSkipped() (bool, string) {
	switch v := c.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
	case string:
		return true, v
	}
	return false, ""
}
