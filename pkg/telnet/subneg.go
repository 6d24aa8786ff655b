package telnet

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/gomud/pkg/config"
	"github.com/arthur-debert/gomud/pkg/errors"
)

// Subnegotiation codecs. Each handler receives the unescaped payload between
// the option byte and the closing IAC SE. Decoding failures are logged and
// the partial record discarded; they never take the session down.

// handleCharsetSB answers a CHARSET REQUEST. If UTF-8 is among the offered
// charsets it is accepted; any other offer is left unanswered.
func (c *Classifier) handleCharsetSB(payload []byte) {
	if len(payload) < 2 || payload[0] != CharsetRequest {
		c.logger.Warn().Int("bytes", len(payload)).Msg("unhandled CHARSET subnegotiation")
		return
	}

	// Payload shape: REQUEST <sep> name [<sep> name ...], e.g. ";UTF-8;GBK".
	offered := strings.Split(strings.ToLower(string(payload[1:])), ";")
	for _, cs := range offered {
		if cs == "utf-8" {
			reply := append([]byte{CharsetAccepted}, "UTF-8"...)
			c.writeSubneg(OptCharset, reply)
			c.encoding = "utf-8"
			c.logger.Debug().Msg("accepted UTF-8 charset")
			return
		}
	}
	c.logger.Warn().Strs("offered", offered).Msg("no acceptable charset offered")
}

// handleTTYPESB answers the MTTS SEND cycle: client name, then terminal
// type, then the feature bitmask. The cycle position advances exactly once
// per SEND and never answers past the third step.
func (c *Classifier) handleTTYPESB(payload []byte) {
	if len(payload) != 1 || payload[0] != TTypeSend {
		c.logger.Warn().Int("bytes", len(payload)).Msg("malformed TTYPE subnegotiation")
		return
	}

	var answer string
	switch c.mttsIndex {
	case 0:
		answer = strings.ToUpper(config.AppName)
	case 1:
		answer = config.TerminalType
	case 2:
		answer = fmt.Sprintf("MTTS %d", config.MTTSFeatures)
	default:
		c.logger.Warn().Int("index", c.mttsIndex+1).Msg("TTYPE SEND past the third cycle, not answering")
		return
	}

	c.writeSubneg(OptTTYPE, append([]byte{TTypeIs}, answer...))
	c.mttsIndex++
	c.logger.Debug().Str("answer", answer).Msg("answered TTYPE SEND")
}

// handleMNESSB parses SEND VAR <name> requests and answers each name found
// in the configured MNES table with IS VAR <name> VAL <value>.
func (c *Classifier) handleMNESSB(payload []byte) {
	const (
		waitCmd = iota
		waitVar
		waitName
	)

	var requested []string
	var name []byte
	st := waitCmd

	flush := func() {
		if len(name) > 0 {
			requested = append(requested, string(name))
			name = name[:0]
		}
	}

	for _, b := range payload {
		switch st {
		case waitCmd:
			if b == MNESSend {
				st = waitVar
			}
		case waitVar:
			if b == MNESVar {
				st = waitName
				name = name[:0]
			}
		case waitName:
			if b == MNESSend || b == IAC {
				flush()
				st = waitCmd
				if b == MNESSend {
					st = waitVar
				}
			} else {
				name = append(name, b)
			}
		}
	}
	flush()

	c.logger.Debug().Strs("vars", requested).Msg("MNES variables requested")
	for _, varName := range requested {
		value, ok := c.cfg.MNES[varName]
		if !ok {
			continue
		}
		reply := []byte{MNESIs, MNESVar}
		reply = append(reply, varName...)
		reply = append(reply, MNESVal)
		reply = append(reply, value...)
		c.writeSubneg(OptMNES, reply)
		c.logger.Debug().Str("var", varName).Str("val", value).Msg("answered MNES request")
	}
}

// handleGMCPSB splits a GMCP message into its package name and opaque value.
// The value is never evaluated here; named GMCP triggers receive it as text.
func (c *Classifier) handleGMCPSB(payload []byte) {
	text := string(payload)
	name, value := text, ""
	if idx := strings.IndexByte(text, ' '); idx >= 0 {
		name, value = text[:idx], text[idx+1:]
	}
	c.logger.Debug().Str("name", name).Msg("GMCP message")
	c.sink.GMCP(name, value)
}

// handleMSDPSB decodes the MSDP VAR/VAL grammar, with one level of array or
// table nesting, and feeds each decoded variable to the sink.
func (c *Classifier) handleMSDPSB(payload []byte) {
	values, err := decodeMSDP(payload)
	if err != nil {
		c.logger.Warn().Err(err).Msg("discarding malformed MSDP subnegotiation")
		return
	}
	for name, value := range values {
		c.msdp[name] = value
		c.sink.MSDP(name, value)
	}
	c.logger.Debug().Int("vars", len(values)).Msg("MSDP subnegotiation decoded")
}

// decodeMSDP parses repeated VAR <name> VAL <value> records where a value is
// scalar text, an array (ARRAY_OPEN repeated VAL ARRAY_CLOSE) or a table
// (TABLE_OPEN repeated VAR/VAL pairs TABLE_CLOSE).
func decodeMSDP(payload []byte) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	i := 0

	for i < len(payload) {
		if payload[i] != MSDPVar {
			return nil, errors.Newf(errors.ErrMalformedSubneg, "expected MSDP_VAR at offset %d, got %d", i, payload[i])
		}
		i++

		var name []byte
		for i < len(payload) && payload[i] != MSDPVal {
			name = append(name, payload[i])
			i++
		}
		if i >= len(payload) {
			return nil, errors.Newf(errors.ErrMalformedSubneg, "MSDP variable %q has no value", string(name))
		}
		i++ // consume MSDP_VAL

		if i < len(payload) && payload[i] == MSDPArrayOpen {
			arr, next, err := decodeMSDPArray(payload, i+1)
			if err != nil {
				return nil, err
			}
			values[string(name)] = arr
			i = next
		} else if i < len(payload) && payload[i] == MSDPTableOpen {
			table, next, err := decodeMSDPTable(payload, i+1)
			if err != nil {
				return nil, err
			}
			values[string(name)] = table
			i = next
		} else {
			var val []byte
			for i < len(payload) && payload[i] != MSDPVar {
				val = append(val, payload[i])
				i++
			}
			values[string(name)] = string(val)
		}
	}

	return values, nil
}

// decodeMSDPArray reads VAL entries until ARRAY_CLOSE. Nested structures
// inside arrays are not supported.
func decodeMSDPArray(payload []byte, i int) ([]string, int, error) {
	arr := []string{}
	var val []byte
	inVal := false

	for ; i < len(payload); i++ {
		switch payload[i] {
		case MSDPArrayClose:
			if inVal {
				arr = append(arr, string(val))
			}
			return arr, i + 1, nil
		case MSDPVal:
			if inVal && len(val) > 0 {
				arr = append(arr, string(val))
			}
			val = val[:0]
			inVal = true
		case MSDPArrayOpen, MSDPTableOpen, MSDPTableClose, MSDPVar:
			return nil, i, errors.Newf(errors.ErrMalformedSubneg, "unexpected MSDP code %d inside array", payload[i])
		default:
			val = append(val, payload[i])
		}
	}
	return nil, i, errors.New(errors.ErrMalformedSubneg, "MSDP array not closed")
}

// decodeMSDPTable reads VAR/VAL pairs until TABLE_CLOSE. The pair sub-state
// starts out explicitly unset so stray data bytes before the first VAR are
// rejected instead of being attributed to a phantom pair.
func decodeMSDPTable(payload []byte, i int) (map[string]string, int, error) {
	const (
		pairNone = iota
		pairVar
		pairVal
	)

	table := make(map[string]string)
	var name, val []byte
	st := pairNone

	commit := func() {
		if len(name) > 0 {
			table[string(name)] = string(val)
		}
		name, val = name[:0], val[:0]
	}

	for ; i < len(payload); i++ {
		switch payload[i] {
		case MSDPTableClose:
			commit()
			return table, i + 1, nil
		case MSDPVar:
			commit()
			st = pairVar
		case MSDPVal:
			st = pairVal
		case MSDPArrayOpen, MSDPArrayClose, MSDPTableOpen:
			return nil, i, errors.Newf(errors.ErrMalformedSubneg, "unexpected MSDP code %d inside table", payload[i])
		default:
			switch st {
			case pairVar:
				name = append(name, payload[i])
			case pairVal:
				val = append(val, payload[i])
			default:
				return nil, i, errors.Newf(errors.ErrMalformedSubneg, "data byte %d before first table VAR", payload[i])
			}
		}
	}
	return nil, i, errors.New(errors.ErrMalformedSubneg, "MSDP table not closed")
}

// handleMSSPSB decodes flat VAR/VAL pairs. The final pair has no trailing
// VAR after it, so whatever is buffered at end of payload is committed too.
func (c *Classifier) handleMSSPSB(payload []byte) {
	var name, val []byte
	st := byte(0)

	commit := func() {
		if len(name) > 0 {
			n, v := string(name), string(val)
			c.mssp[n] = v
			c.sink.MSSP(n, v)
			c.logger.Debug().Str("var", n).Str("val", v).Msg("MSSP status")
		}
		name, val = name[:0], val[:0]
	}

	for _, b := range payload {
		switch b {
		case MSSPVar:
			commit()
			st = MSSPVar
		case MSSPVal:
			st = MSSPVal
		default:
			switch st {
			case MSSPVar:
				name = append(name, b)
			case MSSPVal:
				val = append(val, b)
			default:
				c.logger.Warn().Msg("MSSP data byte before first VAR")
			}
		}
	}
	commit()
}
