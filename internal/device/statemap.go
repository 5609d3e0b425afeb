package device

import "strings"

// IntermediateState is the vendor-agnostic state an incoming raw token
// resolves to before display mapping. Vendors use different raw
// vocabularies ("open"/"closed" for contact sensors, "on"/"off" or nested
// power fields for switches) but converge on this small shared set.
type IntermediateState string

// Intermediate states.
const (
	StateOpen   IntermediateState = "open"
	StateClosed IntermediateState = "closed"
	StateOn     IntermediateState = "on"
	StateOff    IntermediateState = "off"
	StateAlert  IntermediateState = "alert"
	StateNormal IntermediateState = "normal"
)

// DisplayState is the canonical UI-facing state value.
type DisplayState string

// Display states.
const (
	DisplayOpen   DisplayState = "Open"
	DisplayClosed DisplayState = "Closed"
	DisplayOn     DisplayState = "On"
	DisplayOff    DisplayState = "Off"
	DisplayAlert  DisplayState = "Alert"
	DisplayNormal DisplayState = "Normal"
)

// rawToIntermediate maps vendor raw tokens to intermediate states.
// Tokens are compared case-insensitively.
var rawToIntermediate = map[string]IntermediateState{
	"open":   StateOpen,
	"closed": StateClosed,
	"on":     StateOn,
	"off":    StateOff,
	"true":   StateOn,
	"false":  StateOff,
	"alert":  StateAlert,
	"normal": StateNormal,
}

// intermediateToDisplay maps intermediate states to canonical display
// states. Kept separate from rawToIntermediate so the display vocabulary
// never depends on any one vendor's tokens.
var intermediateToDisplay = map[IntermediateState]DisplayState{
	StateOpen:   DisplayOpen,
	StateClosed: DisplayClosed,
	StateOn:     DisplayOn,
	StateOff:    DisplayOff,
	StateAlert:  DisplayAlert,
	StateNormal: DisplayNormal,
}

// RawToIntermediate resolves a vendor raw state token to an intermediate
// state. The second return is false when the token is unrecognized;
// callers must treat that as "no state known" and must not overwrite a
// previously known state.
func RawToIntermediate(token string) (IntermediateState, bool) {
	state, ok := rawToIntermediate[strings.ToLower(strings.TrimSpace(token))]
	return state, ok
}

// IntermediateToDisplay resolves an intermediate state to its canonical
// display state. The second return is false for unrecognized states.
func IntermediateToDisplay(state IntermediateState) (DisplayState, bool) {
	display, ok := intermediateToDisplay[state]
	return display, ok
}

// CanonicalizeState runs both stages: raw vendor token to display state.
// Returns false when either stage misses; a miss is not an error.
func CanonicalizeState(token string) (DisplayState, bool) {
	intermediate, ok := RawToIntermediate(token)
	if !ok {
		return "", false
	}
	return IntermediateToDisplay(intermediate)
}

// ParseDisplayState reports whether a stored status string is one of the
// canonical display values. Status also carries vendor health strings
// ("Online", "Offline") which are not display states.
func ParseDisplayState(s string) (DisplayState, bool) {
	switch DisplayState(s) {
	case DisplayOpen, DisplayClosed, DisplayOn, DisplayOff, DisplayAlert, DisplayNormal:
		return DisplayState(s), true
	}
	return "", false
}
