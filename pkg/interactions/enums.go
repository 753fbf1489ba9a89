// ABOUTME: Open string enums (status, outcome, resolution, language, retrieval status)
// ABOUTME: Unrecognised values are kept verbatim and reported by IsUnknown instead of failing

package interactions

import (
	"encoding/json"
	"slices"

	"github.com/tidwall/gjson"
)

// decodeOpenEnum accepts any JSON scalar. Strings outside known are kept as
// is; non-string scalars keep their JSON text. Both error in strict mode.
func decodeOpenEnum[E ~string](data []byte, known []E, kind string) (E, error) {
	v := gjson.ParseBytes(data)
	var out E
	switch v.Type {
	case gjson.Null:
		return out, nil
	case gjson.String:
		out = E(v.String())
	default:
		if v.Type == gjson.JSON {
			// Objects and arrays are not enum values at all.
			var s string
			return out, json.Unmarshal(data, &s)
		}
		out = E(v.Raw)
	}
	if !slices.Contains(known, out) && StrictUnknown() {
		return "", &UnknownTagError{Kind: kind, Tag: string(out)}
	}
	return out, nil
}

func isUnknownEnum[E ~string](v E, known []E) bool {
	return v != "" && !slices.Contains(known, v)
}

// InteractionStatus is the lifecycle state of an interaction.
type InteractionStatus string

const (
	StatusCompleted      InteractionStatus = "completed"
	StatusInProgress     InteractionStatus = "in_progress"
	StatusRequiresAction InteractionStatus = "requires_action"
	StatusFailed         InteractionStatus = "failed"
	StatusCancelled      InteractionStatus = "cancelled"
)

var knownStatuses = []InteractionStatus{
	StatusCompleted, StatusInProgress, StatusRequiresAction, StatusFailed, StatusCancelled,
}

// IsUnknown reports a status this version does not recognise.
func (s InteractionStatus) IsUnknown() bool { return isUnknownEnum(s, knownStatuses) }

// IsTerminal reports whether the interaction can no longer change.
func (s InteractionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

func (s *InteractionStatus) UnmarshalJSON(data []byte) error {
	v, err := decodeOpenEnum(data, knownStatuses, "status")
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Resolution is the requested media resolution for image and video parts.
type Resolution string

const (
	ResolutionLow       Resolution = "low"
	ResolutionMedium    Resolution = "medium"
	ResolutionHigh      Resolution = "high"
	ResolutionUltraHigh Resolution = "ultra_high"
)

var knownResolutions = []Resolution{ResolutionLow, ResolutionMedium, ResolutionHigh, ResolutionUltraHigh}

func (r Resolution) IsUnknown() bool { return isUnknownEnum(r, knownResolutions) }

func (r *Resolution) UnmarshalJSON(data []byte) error {
	v, err := decodeOpenEnum(data, knownResolutions, "resolution")
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// CodeExecutionOutcome is the result code of a sandboxed code run.
type CodeExecutionOutcome string

const (
	OutcomeOK               CodeExecutionOutcome = "OUTCOME_OK"
	OutcomeFailed           CodeExecutionOutcome = "OUTCOME_FAILED"
	OutcomeDeadlineExceeded CodeExecutionOutcome = "OUTCOME_DEADLINE_EXCEEDED"
	OutcomeUnspecified      CodeExecutionOutcome = "OUTCOME_UNSPECIFIED"
)

var knownOutcomes = []CodeExecutionOutcome{OutcomeOK, OutcomeFailed, OutcomeDeadlineExceeded, OutcomeUnspecified}

func (o CodeExecutionOutcome) IsUnknown() bool { return isUnknownEnum(o, knownOutcomes) }

// IsError reports whether the run did not finish successfully.
func (o CodeExecutionOutcome) IsError() bool {
	return o == OutcomeFailed || o == OutcomeDeadlineExceeded
}

func (o *CodeExecutionOutcome) UnmarshalJSON(data []byte) error {
	v, err := decodeOpenEnum(data, knownOutcomes, "code execution outcome")
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// CodeExecutionLanguage is the language of a code execution call.
type CodeExecutionLanguage string

const LanguagePython CodeExecutionLanguage = "PYTHON"

var knownLanguages = []CodeExecutionLanguage{LanguagePython}

func (l CodeExecutionLanguage) IsUnknown() bool { return isUnknownEnum(l, knownLanguages) }

func (l *CodeExecutionLanguage) UnmarshalJSON(data []byte) error {
	v, err := decodeOpenEnum(data, knownLanguages, "code execution language")
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// URLRetrievalStatus reports how a url_context fetch went.
type URLRetrievalStatus string

const (
	URLRetrievalSuccess     URLRetrievalStatus = "URL_RETRIEVAL_STATUS_SUCCESS"
	URLRetrievalError       URLRetrievalStatus = "URL_RETRIEVAL_STATUS_ERROR"
	URLRetrievalUnsafe      URLRetrievalStatus = "URL_RETRIEVAL_STATUS_UNSAFE"
	URLRetrievalUnspecified URLRetrievalStatus = "URL_RETRIEVAL_STATUS_UNSPECIFIED"
)

var knownRetrievalStatuses = []URLRetrievalStatus{
	URLRetrievalSuccess, URLRetrievalError, URLRetrievalUnsafe, URLRetrievalUnspecified,
}

func (s URLRetrievalStatus) IsUnknown() bool { return isUnknownEnum(s, knownRetrievalStatuses) }

func (s *URLRetrievalStatus) UnmarshalJSON(data []byte) error {
	v, err := decodeOpenEnum(data, knownRetrievalStatuses, "url retrieval status")
	if err != nil {
		return err
	}
	*s = v
	return nil
}
