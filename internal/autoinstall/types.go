package autoinstall

// Fixed values of the cloud-config autoinstall format.
const (
	// Marker is the first line of every cloud-config user-data file.
	Marker = "#cloud-config"
	// SectionKey is the only top-level key of an autoinstall document.
	SectionKey = "autoinstall"
	// VersionKey is the format version field inside the section.
	VersionKey = "version"
	// DefaultVersion is the only version the schema accepts.
	DefaultVersion = 1
)

// Correction names an automatic fix applied to the buffer.
type Correction string

// Corrections applied by the procedure.
const (
	CorrectionHeader  Correction = "header_added"
	CorrectionVersion Correction = "version_added"
)

// Rules holds the fixed normalization parameters.
type Rules struct {
	// Marker is the required first line.
	Marker string
	// Section is the top-level key holding the configuration.
	Section string
	// VersionKey is the version field name inside Section.
	VersionKey string
	// DefaultVersion is injected when VersionKey is missing.
	DefaultVersion int
}

// DefaultRules returns the rules for Subiquity autoinstall documents.
func DefaultRules() Rules {
	return Rules{
		Marker:         Marker,
		Section:        SectionKey,
		VersionKey:     VersionKey,
		DefaultVersion: DefaultVersion,
	}
}

// Result is the outcome of one validate-and-correct run.
type Result struct {
	// Text is the buffer after corrections. It is returned even when Err is set.
	Text string
	// Corrections lists applied fixes in order.
	Corrections []Correction
	// Err is the terminal error, nil when the document is valid.
	Err error
}

// Valid reports whether the document passed the schema check.
func (r Result) Valid() bool {
	return r.Err == nil
}

// Changed reports whether any correction touched the buffer.
func (r Result) Changed() bool {
	return len(r.Corrections) > 0
}
