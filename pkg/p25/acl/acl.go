// Package acl implements the access-control list grammar the Trunk
// Engine consults for subscriber, talkgroup, and registration
// validity. The rule grammar
// and matching logic are carried unchanged from pkg/peer/acl.go; this
// package adds the Set that groups the three P25-specific lists
// (registration, subscriber, talkgroup) behind the single ACL trait
// the engine depends on.
package acl

import (
	"fmt"
	"strconv"
	"strings"
)

// Action defines whether a list permits or denies matches.
type Action int

const (
	Permit Action = iota
	Deny
)

func (a Action) String() string {
	switch a {
	case Permit:
		return "PERMIT"
	case Deny:
		return "DENY"
	default:
		return "UNKNOWN"
	}
}

// RuleType identifies the shape of a single ACL rule.
type RuleType int

const (
	RuleTypeAll RuleType = iota
	RuleTypeSingle
	RuleTypeRange
)

// Rule is a single entry within a List.
type Rule struct {
	Type  RuleType
	ID    uint32 // RuleTypeSingle
	Start uint32 // RuleTypeRange
	End   uint32 // RuleTypeRange
}

func (r Rule) String() string {
	switch r.Type {
	case RuleTypeAll:
		return "ALL"
	case RuleTypeSingle:
		return fmt.Sprintf("%d", r.ID)
	case RuleTypeRange:
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	default:
		return "UNKNOWN"
	}
}

// Matches reports whether id satisfies this rule.
func (r Rule) Matches(id uint32) bool {
	switch r.Type {
	case RuleTypeAll:
		return true
	case RuleTypeSingle:
		return r.ID == id
	case RuleTypeRange:
		return id >= r.Start && id <= r.End
	default:
		return false
	}
}

// List is a single PERMIT/DENY access list, e.g. the subscriber ACL
// or the talkgroup ACL.
type List struct {
	Action Action
	Rules  []Rule
}

func (l *List) String() string {
	rules := make([]string, 0, len(l.Rules))
	for _, r := range l.Rules {
		rules = append(rules, r.String())
	}
	return fmt.Sprintf("%s:%s", l.Action, strings.Join(rules, ","))
}

// Check reports whether id is allowed by this list.
func (l *List) Check(id uint32) bool {
	if l == nil {
		return true
	}
	matches := false
	for _, r := range l.Rules {
		if r.Matches(id) {
			matches = true
			break
		}
	}
	if l.Action == Permit {
		return matches
	}
	return !matches
}

// Parse parses an ACL string in the format "ACTION:RULE[,RULE]...",
// e.g. "PERMIT:ALL", "DENY:1", "PERMIT:3100-3199".
func Parse(rule string) (*List, error) {
	if rule == "" {
		return nil, fmt.Errorf("empty ACL rule")
	}

	parts := strings.SplitN(rule, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid ACL format: missing colon")
	}

	var action Action
	switch strings.ToUpper(parts[0]) {
	case "PERMIT":
		action = Permit
	case "DENY":
		action = Deny
	default:
		return nil, fmt.Errorf("invalid ACL action: %s", parts[0])
	}

	list := &List{Action: action}

	for _, ruleStr := range strings.Split(parts[1], ",") {
		ruleStr = strings.TrimSpace(ruleStr)
		if ruleStr == "" {
			continue
		}

		if strings.ToUpper(ruleStr) == "ALL" {
			list.Rules = append(list.Rules, Rule{Type: RuleTypeAll})
			continue
		}

		if strings.Contains(ruleStr, "-") {
			rangeParts := strings.Split(ruleStr, "-")
			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid range format: %s", ruleStr)
			}
			start, err := strconv.ParseUint(strings.TrimSpace(rangeParts[0]), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid range start: %s", rangeParts[0])
			}
			end, err := strconv.ParseUint(strings.TrimSpace(rangeParts[1]), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid range end: %s", rangeParts[1])
			}
			if start > end {
				return nil, fmt.Errorf("invalid range: start (%d) > end (%d)", start, end)
			}
			list.Rules = append(list.Rules, Rule{Type: RuleTypeRange, Start: uint32(start), End: uint32(end)})
			continue
		}

		id, err := strconv.ParseUint(ruleStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid ID: %s", ruleStr)
		}
		list.Rules = append(list.Rules, Rule{Type: RuleTypeSingle, ID: uint32(id)})
	}

	if len(list.Rules) == 0 {
		return nil, fmt.Errorf("no rules specified")
	}

	return list, nil
}
