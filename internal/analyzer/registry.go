package analyzer

// BuiltIn returns the stock analyzers in their canonical execution
// order. Hosts filter this list by configuration before registering.
func BuiltIn() []Analyzer {
	return []Analyzer{
		NPlusOne{},
		DuplicateQuery{},
		SlowQuery{},
		UnboundedResult{},
		MissingIndex{},
		SensitiveFields{},
	}
}
