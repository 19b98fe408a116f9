package types

// ResultKind is the machine-readable classification of a command outcome.
// It is kept internal for tests and logging; end users only ever see the
// prose message carried alongside it.
type ResultKind string

const (
	ResultOK ResultKind = "ok"

	ResultAlreadyRegistered ResultKind = "already_registered"
	ResultNotRegistered     ResultKind = "not_registered"
	ResultEmptyMentions     ResultKind = "empty_mentions"
	ResultAlreadyActive     ResultKind = "already_active"
	ResultNotActive         ResultKind = "not_active"
	ResultEmptyGroup        ResultKind = "empty_group"
	ResultInvalidResponse   ResultKind = "invalid_response"
	ResultNoResponses       ResultKind = "no_responses"
	ResultNoChange          ResultKind = "no_change"
	ResultStorageFailure    ResultKind = "storage_failure"
)

// String returns the string representation of the result kind
func (k ResultKind) String() string {
	return string(k)
}
