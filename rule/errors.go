package rule

import (
	"errors"
	"fmt"
)

// ValidationError reports an invalid rule part at construction time. It is
// the only error kind New and NewFromParts return; once a Rule exists no
// operation on it fails with a validation problem.
type ValidationError struct {
	Part   string // the offending RFC 5545 rule part, e.g. "BYMONTHDAY"
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Part == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Part, e.Reason)
}

// ErrUnboundedRule is returned by All when the rule has neither COUNT nor
// UNTIL and would therefore enumerate forever.
var ErrUnboundedRule = errors.New("rule has no COUNT or UNTIL and is unbounded")
