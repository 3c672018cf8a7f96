package request

import "fmt"

// Action is a workflow command applied to a request.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionReturn  Action = "return"
)

type transition struct {
	from []Status
	to   Status
	err  error
}

var transitions = map[Action]transition{
	ActionSubmit:  {from: []Status{StatusDraft, StatusReturned}, to: StatusApplied, err: ErrNotSubmittable},
	ActionApprove: {from: []Status{StatusApplied}, to: StatusApproved, err: ErrNotInAppliedState},
	ActionReject:  {from: []Status{StatusApplied}, to: StatusRejected, err: ErrNotInAppliedState},
	ActionReturn:  {from: []Status{StatusApplied}, to: StatusReturned, err: ErrNotInAppliedState},
}

// Next returns the status reached by applying action to current.
func Next(current Status, action Action) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return current, fmt.Errorf("unknown workflow action %q", action)
	}
	for _, from := range t.from {
		if from == current {
			return t.to, nil
		}
	}
	return current, t.err
}

// RequiresApprover reports whether only an approver or admin may perform action.
func (a Action) RequiresApprover() bool {
	return a != ActionSubmit
}

// Cancellable reports whether the applicant may still withdraw a request in s.
func Cancellable(s Status) bool {
	return s == StatusDraft || s == StatusReturned
}

// Editable reports whether attachments may still be added in s.
func Editable(s Status) bool {
	return s == StatusDraft || s == StatusReturned
}
