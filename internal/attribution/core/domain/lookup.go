package domain

type LookupStatus int

const (
	NotFound LookupStatus = iota
	Found
	// SoftFailure means the source could not be read (storage down,
	// malformed blob, undecodable cookie). Callers treat it as absent.
	SoftFailure
)

func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case SoftFailure:
		return "soft_failure"
	default:
		return "not_found"
	}
}

// Lookup is the outcome of reading one attribution source.
type Lookup struct {
	Source string
	Value  string
	Status LookupStatus
	Err    error
}

func FoundIn(source, value string) Lookup {
	return Lookup{Source: source, Value: value, Status: Found}
}

func NotFoundIn(source string) Lookup {
	return Lookup{Source: source, Status: NotFound}
}

func SoftFailureIn(source string, err error) Lookup {
	return Lookup{Source: source, Status: SoftFailure, Err: err}
}

func (l Lookup) Found() bool {
	return l.Status == Found && l.Value != ""
}
