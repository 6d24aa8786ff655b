package session

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// lineEncoding resolves the session's current character encoding: whatever
// CHARSET negotiation settled on, falling back to the configured default.
// A nil return means pass-through (UTF-8 or an unresolvable name).
func (s *Session) lineEncoding() encoding.Encoding {
	name := s.classifier.Encoding()
	if name == "" {
		name = s.cfg.Server.DefaultEncoding
	}
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8", "ascii", "us-ascii":
		return nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		s.logger.Warn().Str("encoding", name).Msg("unknown encoding, passing bytes through")
		return nil
	}
	return enc
}

// decodeIncoming converts one server line from the session encoding to
// UTF-8. Undecodable input is kept as-is rather than dropped.
func (s *Session) decodeIncoming(raw []byte) string {
	enc := s.lineEncoding()
	if enc == nil {
		return string(raw)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cannot decode server line")
		return string(raw)
	}
	return string(out)
}

// encodeOutgoing converts command text from UTF-8 to the session encoding.
func (s *Session) encodeOutgoing(text string) []byte {
	enc := s.lineEncoding()
	if enc == nil {
		return []byte(text)
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		s.logger.Warn().Err(err).Str("text", text).Msg("cannot encode command")
		return []byte(text)
	}
	return out
}
