package ingress

import (
	"fmt"
)

// MalformedRuleError reports a legacy object that cannot be parsed into
// canonical form. It excludes the object from translation but does not
// abort the batch.
type MalformedRuleError struct {
	Namespace string
	Name      string
	Reason    string
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("malformed ingress %s/%s: %s", e.Namespace, e.Name, e.Reason)
}

// UnsupportedRuleError reports a recognized annotation combination that
// the migration refuses to translate. It carries the offending object
// and annotation key; the parser does not attempt to repair it.
type UnsupportedRuleError struct {
	Namespace  string
	Name       string
	Annotation string
	Reason     string
}

func (e *UnsupportedRuleError) Error() string {
	return fmt.Sprintf("unsupported ingress %s/%s: annotation %s: %s",
		e.Namespace, e.Name, e.Annotation, e.Reason)
}
