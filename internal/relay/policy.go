package relay

import (
	"fmt"
	"strings"
)

// Policy selects the compensating action taken when a registration was
// stored locally but the identity authority did not confirm it.
type Policy string

const (
	// PolicyEager keeps the pending local account. A retry by the same user
	// fails with a duplicate username while the authority has no account.
	PolicyEager Policy = "eager"
	// PolicyRollback deletes the pending local account so a retry starts over.
	PolicyRollback Policy = "rollback"
	// PolicyResume keeps the pending account and re-forwards it when the same
	// user registers again with a password matching the stored hash.
	PolicyResume Policy = "resume"
)

func ParsePolicy(raw string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PolicyEager, nil
	case PolicyEager, PolicyRollback, PolicyResume:
		return p, nil
	default:
		return "", fmt.Errorf("unknown registration policy %q (want eager, rollback or resume)", raw)
	}
}
