package session

// Variable table. Implements script.VarSource, so code lines expand
// directly against the session. %line and %raw are refreshed on every
// incoming line before triggers run.

// GetVariable looks a variable up by name.
func (s *Session) GetVariable(name string) (string, bool) {
	s.varMu.RLock()
	defer s.varMu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Variable returns a variable's value, or fallback when it is unset.
func (s *Session) Variable(name, fallback string) string {
	if v, ok := s.GetVariable(name); ok {
		return v
	}
	return fallback
}

// SetVariable stores a variable.
func (s *Session) SetVariable(name, value string) {
	s.varMu.Lock()
	defer s.varMu.Unlock()
	s.vars[name] = value
}

// DeleteVariable removes a variable.
func (s *Session) DeleteVariable(name string) {
	s.varMu.Lock()
	defer s.varMu.Unlock()
	delete(s.vars, name)
}

// VariableNames returns the names of all set variables.
func (s *Session) VariableNames() []string {
	s.varMu.RLock()
	defer s.varMu.RUnlock()
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	return names
}
