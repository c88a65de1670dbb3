package fetch

// State is a step of the per-identifier pipeline
type State int

const (
	StateStart State = iota
	StatePageLoaded
	StateFieldsLocated
	StateChallengeHandled
	StateFormFilled
	StateSubmitted
	StateResultParsed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StatePageLoaded:
		return "PageLoaded"
	case StateFieldsLocated:
		return "FieldsLocated"
	case StateChallengeHandled:
		return "ChallengeHandled"
	case StateFormFilled:
		return "FormFilled"
	case StateSubmitted:
		return "Submitted"
	case StateResultParsed:
		return "ResultParsed"
	default:
		return "Unknown"
	}
}
