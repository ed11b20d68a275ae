package severity

// Default tier boundaries per issue kind. These are policy, not
// contract: the configuration surface may override any of them, and the
// detection thresholds used by the analyzers live alongside them so
// each kind is tuned from a single map.
var defaults = map[string]Thresholds{
	KindNPlusOne: {
		"detect_count":                 5,   // shape must repeat more than this to be reported
		"suppress_count":               3,   // below this the finding is noise
		"warn_count":                   3,   // inclusive
		"critical_count":               100, // inclusive
		"critical_count_with_duration": 50,  // inclusive, paired with total duration
		"critical_total_duration_ms":   100, // inclusive
	},
	KindSlowQuery: {
		"detect_duration_ms":   100, // single operation slower than this is reported
		"suppress_duration_ms": 10,
		"warn_duration_ms":     10,  // inclusive
		"critical_duration_ms": 100, // exclusive: strictly slower than this
	},
	KindUnboundedResult: {
		"detect_rows":   50,
		"suppress_rows": 50,
		"warn_rows":     50,    // inclusive
		"critical_rows": 10000, // exclusive: strictly more than this
	},
	KindDuplicateQuery: {
		"detect_count":   2,
		"suppress_count": 2,
		"warn_count":     2,  // inclusive
		"critical_count": 50, // inclusive
	},
	KindMissingIndex: {
		"detect_rows":           1000, // full scans over fewer rows are not reported
		"warn_rows":             1000, // inclusive
		"critical_rows":         100000,
		"capability_timeout_ms": 2000,
	},
	KindSensitiveField: {
		"critical_fields": 5, // inclusive
	},
}

// Defaults returns a copy of the documented default thresholds for a
// kind. Unknown kinds return an empty map.
func Defaults(kind string) Thresholds {
	th := make(Thresholds, len(defaults[kind]))
	for k, v := range defaults[kind] {
		th[k] = v
	}
	return th
}

// Kinds lists every issue kind with built-in policy, in a stable order.
func Kinds() []string {
	return []string{
		KindNPlusOne,
		KindSlowQuery,
		KindUnboundedResult,
		KindDuplicateQuery,
		KindMissingIndex,
		KindSensitiveField,
	}
}

// Resolve merges configured overrides on top of the kind's defaults.
// A nil override map resolves to the plain defaults.
func Resolve(kind string, overrides map[string]float64) Thresholds {
	th := Defaults(kind)
	for k, v := range overrides {
		th[k] = v
	}
	return th
}
