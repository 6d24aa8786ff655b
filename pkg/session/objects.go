package session

import (
	"github.com/arthur-debert/gomud/pkg/errors"
	"github.com/arthur-debert/gomud/pkg/match"
)

// Object tables. Each kind has its own registry; ids are unique across all
// of them.

// AddAlias registers an alias, assigning an id if it has none.
func (s *Session) AddAlias(a *match.Matcher) error {
	if a.Kind() != match.KindAlias {
		return errors.Newf(errors.ErrObjectInvalid, "%s is not an alias", a.Kind())
	}
	if a.ID == "" {
		a.ID = s.nextID(match.KindAlias)
	}
	return s.aliases.Register(a.ID, a)
}

// AddTrigger registers a trigger, assigning an id if it has none.
func (s *Session) AddTrigger(t *match.Matcher) error {
	if t.Kind() != match.KindTrigger {
		return errors.Newf(errors.ErrObjectInvalid, "%s is not a trigger", t.Kind())
	}
	if t.ID == "" {
		t.ID = s.nextID(match.KindTrigger)
	}
	return s.triggers.Register(t.ID, t)
}

// AddCommand registers a command object.
func (s *Session) AddCommand(c Executor) error {
	meta := c.Meta()
	if meta.ID == "" {
		meta.ID = s.nextID(match.KindCommand)
	}
	return s.commands.Register(meta.ID, c)
}

// AddTimer registers a timer and starts it when it is enabled.
func (s *Session) AddTimer(t *Timer) error {
	if t.ID == "" {
		t.ID = s.nextID(match.KindTimer)
	}
	if err := s.timers.Register(t.ID, t); err != nil {
		return err
	}
	if t.IsEnabled() {
		t.Start(s.ctx)
	}
	return nil
}

// AddGMCPTrigger registers a trigger under its GMCP package name.
func (s *Session) AddGMCPTrigger(g *match.GMCPTrigger) error {
	if g.ID == "" {
		return errors.New(errors.ErrObjectInvalid, "a GMCP trigger requires a name")
	}
	return s.gmcpTriggers.Register(g.ID, g)
}

// Alias looks an alias up by id.
func (s *Session) Alias(id string) (*match.Matcher, error) {
	return s.aliases.Get(id)
}

// Trigger looks a trigger up by id.
func (s *Session) Trigger(id string) (*match.Matcher, error) {
	return s.triggers.Get(id)
}

// Command looks a command up by id.
func (s *Session) Command(id string) (Executor, error) {
	return s.commands.Get(id)
}

// TimerByID looks a timer up by id.
func (s *Session) TimerByID(id string) (*Timer, error) {
	return s.timers.Get(id)
}

// RemoveObject removes an object of any kind by id. Timers are stopped,
// commands are reset through their own Execute contract.
func (s *Session) RemoveObject(id string) error {
	if s.aliases.Has(id) {
		return s.aliases.Remove(id)
	}
	if s.triggers.Has(id) {
		return s.triggers.Remove(id)
	}
	if s.commands.Has(id) {
		return s.commands.Remove(id)
	}
	if s.gmcpTriggers.Has(id) {
		return s.gmcpTriggers.Remove(id)
	}
	if t, err := s.timers.Get(id); err == nil {
		t.Stop()
		return s.timers.Remove(id)
	}
	return errors.Newf(errors.ErrObjectNotFound, "no object with id %q", id)
}

// EnableGroup flips the enabled flag of every object in a group, across all
// kinds. Timers additionally start or stop. Returns how many objects were
// affected.
func (s *Session) EnableGroup(group string, enabled bool) int {
	count := 0

	for _, m := range s.aliases.Values() {
		if m.Group == group {
			m.SetEnabled(enabled)
			count++
		}
	}
	for _, m := range s.triggers.Values() {
		if m.Group == group {
			m.SetEnabled(enabled)
			count++
		}
	}
	for _, c := range s.commands.Values() {
		if c.Meta().Group == group {
			c.Meta().Enabled = enabled
			count++
		}
	}
	for _, g := range s.gmcpTriggers.Values() {
		if g.Group == group {
			g.SetEnabled(enabled)
			count++
		}
	}
	for _, t := range s.timers.Values() {
		if t.Group == group {
			t.SetEnabled(enabled)
			if enabled {
				t.Start(s.ctx)
			} else {
				t.Stop()
			}
			count++
		}
	}

	return count
}

// removeGroup drops every object belonging to a group. Used by module
// unloading.
func (s *Session) removeGroup(group string) int {
	count := 0
	for _, m := range s.aliases.Values() {
		if m.Group == group && s.aliases.Remove(m.ID) == nil {
			count++
		}
	}
	for _, m := range s.triggers.Values() {
		if m.Group == group && s.triggers.Remove(m.ID) == nil {
			count++
		}
	}
	for _, c := range s.commands.Values() {
		if c.Meta().Group == group && s.commands.Remove(c.Meta().ID) == nil {
			count++
		}
	}
	for _, g := range s.gmcpTriggers.Values() {
		if g.Group == group && s.gmcpTriggers.Remove(g.ID) == nil {
			count++
		}
	}
	for _, t := range s.timers.Values() {
		if t.Group == group {
			t.Stop()
			if s.timers.Remove(t.ID) == nil {
				count++
			}
		}
	}
	return count
}
