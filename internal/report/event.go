package report

import (
	"fmt"
	"strings"

	"github.com/user/report-bot/internal/schema"
)

// Event is a decoded report-menu action. Callback-data strings are parsed
// exactly once at the transport boundary; the engine switches on the typed
// event and never sees raw strings.
type Event interface {
	isEvent()
}

// SelectField asks to enter a value for one field.
type SelectField struct {
	Key string
}

// Submit finalizes the draft and writes it to the store.
type Submit struct{}

// Cancel discards the draft without a store write.
type Cancel struct{}

// Reset clears every entered value.
type Reset struct{}

// EditToday loads today's stored report into a fresh draft.
type EditToday struct{}

func (SelectField) isEvent() {}
func (Submit) isEvent()      {}
func (Cancel) isEvent()      {}
func (Reset) isEvent()       {}
func (EditToday) isEvent()   {}

// Wire format: "field|<key>" selects a field, "action|<name>" is a control
// action. Kept compatible with the inline keyboard payload limits.
const (
	prefixField  = "field"
	prefixAction = "action"

	actionSend      = "send"
	actionCancel    = "cancel"
	actionReset     = "reset"
	actionEditToday = "edit_today"

	dataSeparator = "|"
)

// EncodeSelectField builds the callback payload for a field button.
func EncodeSelectField(key string) string {
	return prefixField + dataSeparator + key
}

// EncodeAction builds the callback payload for a control event.
func EncodeAction(ev Event) string {
	switch ev.(type) {
	case Submit:
		return prefixAction + dataSeparator + actionSend
	case Cancel:
		return prefixAction + dataSeparator + actionCancel
	case Reset:
		return prefixAction + dataSeparator + actionReset
	case EditToday:
		return prefixAction + dataSeparator + actionEditToday
	default:
		panic(fmt.Sprintf("event %T has no wire encoding", ev))
	}
}

// ParseEvent decodes a callback payload. Unknown actions and undeclared
// field keys are rejected so a stale or foreign payload can never reach
// the engine.
func ParseEvent(s *schema.Schema, data string) (Event, error) {
	prefix, rest, ok := strings.Cut(data, dataSeparator)
	if !ok {
		return nil, fmt.Errorf("malformed callback data %q", data)
	}

	switch prefix {
	case prefixField:
		if _, known := s.Lookup(rest); !known {
			return nil, fmt.Errorf("callback data names unknown field %q", rest)
		}
		return SelectField{Key: rest}, nil
	case prefixAction:
		switch rest {
		case actionSend:
			return Submit{}, nil
		case actionCancel:
			return Cancel{}, nil
		case actionReset:
			return Reset{}, nil
		case actionEditToday:
			return EditToday{}, nil
		}
		return nil, fmt.Errorf("unknown action %q", rest)
	default:
		return nil, fmt.Errorf("unknown callback prefix %q", prefix)
	}
}
