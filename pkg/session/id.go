package session

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/arthur-debert/gomud/pkg/match"
)

// nextID generates a session-unique id for a kind, like "tri_3". If the
// counter-based id is already taken (a script claimed it explicitly), a
// random id is used instead.
func (s *Session) nextID(kind match.Kind) string {
	id := fmt.Sprintf("%s_%d", kind.Abbr(), atomic.AddUint64(&s.idSeq, 1))
	if !s.hasObjectID(id) {
		return id
	}
	return fmt.Sprintf("%s_%s", kind.Abbr(), uuid.NewString()[:8])
}

func (s *Session) hasObjectID(id string) bool {
	return s.aliases.Has(id) ||
		s.triggers.Has(id) ||
		s.commands.Has(id) ||
		s.timers.Has(id) ||
		s.gmcpTriggers.Has(id)
}
