package chkconfig

// Origin identifies where a resolved flag state came from.
type Origin int

const (
	// OriginUnknown is the uninitialized sentinel; resolution never
	// returns it for a successfully resolved flag.
	OriginUnknown Origin = iota
	// OriginNone indicates no backing file exists anywhere and the state
	// defaulted to off.
	OriginNone
	// OriginDefault indicates the state came from the read-only fallback
	// default directory.
	OriginDefault
	// OriginState indicates the state came from the read/write state
	// directory.
	OriginState
)

func (o Origin) String() string {
	switch o {
	case OriginNone:
		return "none"
	case OriginDefault:
		return "default"
	case OriginState:
		return "state"
	default:
		return "unknown"
	}
}

// ParseOrigin converts a string representation into the corresponding
// Origin. Returns OriginUnknown for unrecognised values.
func ParseOrigin(value string) Origin {
	switch value {
	case "none":
		return OriginNone
	case "default":
		return OriginDefault
	case "state":
		return OriginState
	default:
		return OriginUnknown
	}
}
