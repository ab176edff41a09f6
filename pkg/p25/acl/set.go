package acl

// Set groups three access lists: unit registration, subscriber unit,
// and talkgroup. The Trunk Engine consults the subscriber and
// talkgroup lists per RF TSBK; the registration list is reachable
// through ValidateReg, which the engine does not call. A nil list
// inside a Set permits everything, matching List.Check's nil receiver.
type Set struct {
	Reg *List // unit registration ACL
	Sub *List // subscriber unit ACL
	TG  *List // talkgroup ACL
}

// NewSet parses the three acl.{reg_acl,sub_acl,tg_acl} rule strings.
// An empty string yields a permissive (nil) list.
func NewSet(regRule, subRule, tgRule string) (*Set, error) {
	s := &Set{}
	var err error
	if regRule != "" {
		if s.Reg, err = Parse(regRule); err != nil {
			return nil, err
		}
	}
	if subRule != "" {
		if s.Sub, err = Parse(subRule); err != nil {
			return nil, err
		}
	}
	if tgRule != "" {
		if s.TG, err = Parse(tgRule); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Validate reports whether id is a valid subscriber/destination unit.
func (s *Set) Validate(id uint32) bool {
	if s == nil {
		return true
	}
	return s.Sub.Check(id)
}

// ValidateTG reports whether tgid is a valid talkgroup.
func (s *Set) ValidateTG(tgid uint32) bool {
	if s == nil {
		return true
	}
	return s.TG.Check(tgid)
}

// ValidateReg reports whether id is permitted to register.
func (s *Set) ValidateReg(id uint32) bool {
	if s == nil {
		return true
	}
	return s.Reg.Check(id)
}
