// Package severity maps finding metrics to severity tiers and applies
// the below-noise-floor suppression policy.
//
// Every function here is pure: no I/O, no randomness, no state. Tier
// boundaries come in as resolved threshold maps; the documented defaults
// live in Defaults and are overridable through configuration.
package severity

// Severity is the three-level classification attached to an issue.
type Severity int

const (
	Info Severity = iota
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity for JSON reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Metrics are the numeric measurements a finding carries, keyed by
// metric name (count, duration_ms, rows, ...).
type Metrics map[string]float64

// Thresholds are the resolved tier boundaries for one issue kind,
// keyed by threshold name.
type Thresholds map[string]float64

// Rule holds the severity function and suppression predicate for one
// issue kind.
type Rule struct {
	// Calculate applies the kind's tier policy: Critical tiers are
	// checked first, then Warning, else Info. Tiers that pair two
	// metrics use OR semantics unless noted in the defaults.
	Calculate func(m Metrics, th Thresholds) Severity

	// Suppress reports whether the finding is below the noise floor.
	// It is evaluated before Calculate; a suppressed finding never
	// becomes an issue.
	Suppress func(m Metrics, th Thresholds) bool
}

// rules maps issue kind to its severity policy.
var rules = map[string]Rule{
	KindNPlusOne: {
		Calculate: func(m Metrics, th Thresholds) Severity {
			count := m["count"]
			totalDur := m["total_duration_ms"]
			if count >= th["critical_count"] {
				return Critical
			}
			if count >= th["critical_count_with_duration"] && totalDur >= th["critical_total_duration_ms"] {
				return Critical
			}
			if count >= th["warn_count"] {
				return Warning
			}
			return Info
		},
		Suppress: func(m Metrics, th Thresholds) bool {
			return m["count"] < th["suppress_count"]
		},
	},
	KindSlowQuery: {
		Calculate: func(m Metrics, th Thresholds) Severity {
			dur := m["duration_ms"]
			if dur > th["critical_duration_ms"] {
				return Critical
			}
			if dur >= th["warn_duration_ms"] {
				return Warning
			}
			return Info
		},
		Suppress: func(m Metrics, th Thresholds) bool {
			return m["duration_ms"] < th["suppress_duration_ms"]
		},
	},
	KindUnboundedResult: {
		Calculate: func(m Metrics, th Thresholds) Severity {
			rows := m["rows"]
			if rows > th["critical_rows"] {
				return Critical
			}
			if rows >= th["warn_rows"] {
				return Warning
			}
			return Info
		},
		Suppress: func(m Metrics, th Thresholds) bool {
			return m["rows"] < th["suppress_rows"]
		},
	},
	KindDuplicateQuery: {
		Calculate: func(m Metrics, th Thresholds) Severity {
			count := m["count"]
			if count >= th["critical_count"] {
				return Critical
			}
			if count >= th["warn_count"] {
				return Warning
			}
			return Info
		},
		Suppress: func(m Metrics, th Thresholds) bool {
			return m["count"] < th["suppress_count"]
		},
	},
	KindMissingIndex: {
		Calculate: func(m Metrics, th Thresholds) Severity {
			rows := m["rows"]
			if rows >= th["critical_rows"] {
				return Critical
			}
			if rows >= th["warn_rows"] {
				return Warning
			}
			return Info
		},
		Suppress: func(m Metrics, th Thresholds) bool {
			return false
		},
	},
	KindSensitiveField: {
		Calculate: func(m Metrics, th Thresholds) Severity {
			if m["fields"] >= th["critical_fields"] {
				return Critical
			}
			return Warning
		},
		Suppress: func(m Metrics, th Thresholds) bool {
			return m["fields"] < 1
		},
	},
}

// Issue kind identifiers shared across the pipeline, severity policy,
// and suggestion templates.
const (
	KindNPlusOne        = "n_plus_one"
	KindSlowQuery       = "slow_query"
	KindUnboundedResult = "unbounded_result"
	KindDuplicateQuery  = "duplicate_query"
	KindMissingIndex    = "missing_index"
	KindSensitiveField  = "sensitive_field_exposure"
)

// ForKind returns the severity rule for a kind. Unknown kinds get a
// permissive fallback (never suppressed, always Info) so that external
// analyzers registered by the host still produce issues.
func ForKind(kind string) Rule {
	if r, ok := rules[kind]; ok {
		return r
	}
	return Rule{
		Calculate: func(Metrics, Thresholds) Severity { return Info },
		Suppress:  func(Metrics, Thresholds) bool { return false },
	}
}

// Calculate resolves the kind's rule and applies it.
func Calculate(kind string, m Metrics, th Thresholds) Severity {
	return ForKind(kind).Calculate(m, th)
}

// ShouldSuppress resolves the kind's rule and applies its noise floor.
func ShouldSuppress(kind string, m Metrics, th Thresholds) bool {
	return ForKind(kind).Suppress(m, th)
}
