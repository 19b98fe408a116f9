package types

// Intent is a named bot action resolved from an inbound message, either by
// the exact command parser or by the language classifier. Each intent maps
// to exactly one orchestrator operation.
type Intent string

const (
	IntentRegister       Intent = "register"
	IntentAddUsers       Intent = "add"
	IntentRemoveUsers    Intent = "remove"
	IntentGroupDetails   Intent = "groupDetails"
	IntentStartStandup   Intent = "startStandup"
	IntentRestartStandup Intent = "restartStandup"
	IntentCloseStandup   Intent = "closeStandup"
	IntentPurpose        Intent = "purpose"
	IntentUnknown        Intent = "unknown"
)

// AllIntents returns the intents the classifier may resolve to
func AllIntents() []Intent {
	return []Intent{
		IntentRegister,
		IntentAddUsers,
		IntentRemoveUsers,
		IntentGroupDetails,
		IntentStartStandup,
		IntentRestartStandup,
		IntentCloseStandup,
		IntentPurpose,
	}
}

// IsValid checks if the intent is a known action
func (i Intent) IsValid() bool {
	switch i {
	case IntentRegister, IntentAddUsers, IntentRemoveUsers, IntentGroupDetails,
		IntentStartStandup, IntentRestartStandup, IntentCloseStandup, IntentPurpose:
		return true
	default:
		return false
	}
}

// String returns the string representation of the intent
func (i Intent) String() string {
	return string(i)
}
