package world

import "slices"

// SetTarget points attacker at target. Any previous target is released
// first; target.TargetedBy gains attacker exactly once.
func (s *State) SetTarget(attacker, target *Character) {
	s.ReleaseTarget(attacker)
	if target == nil {
		return
	}
	attacker.Target = target.ID
	target.TargetedBy[attacker.ID] = struct{}{}
}

// ReleaseTarget clears attacker's target and removes attacker from the
// prior target's TargetedBy. Returns the prior target if still alive.
func (s *State) ReleaseTarget(attacker *Character) *Character {
	if attacker.Target.IsZero() {
		return nil
	}
	prior := s.Get(attacker.Target)
	attacker.Target = 0
	if prior != nil {
		delete(prior.TargetedBy, attacker.ID)
	}
	return prior
}

// ReleaseAll breaks every targeting relation c takes part in, in both
// directions. Returns the live characters on the other side.
func (s *State) ReleaseAll(c *Character) []*Character {
	var affected []*Character
	if prior := s.ReleaseTarget(c); prior != nil {
		affected = append(affected, prior)
	}
	for id := range c.TargetedBy {
		attacker := s.Get(id)
		if attacker != nil && attacker.Target == c.ID {
			attacker.Target = 0
			if !slices.Contains(affected, attacker) {
				affected = append(affected, attacker)
			}
		}
		delete(c.TargetedBy, id)
	}
	return affected
}

// CanAttack holds only when both directions of the relation agree. A
// stale or half-broken relation fails.
func CanAttack(attacker, victim *Character) bool {
	if attacker == nil || victim == nil || attacker.ID.IsZero() {
		return false
	}
	return attacker.Target == victim.ID && victim.IsTargetedBy(attacker.ID)
}
