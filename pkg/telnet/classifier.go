package telnet

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/gomud/pkg/config"
	"github.com/arthur-debert/gomud/pkg/logging"
)

// Sink receives the classifier's decoded output. The session implements it;
// everything here is called synchronously from the network read loop.
type Sink interface {
	// Data delivers one plain data byte.
	Data(b byte)

	// GoAhead flushes any accumulated line data. Fired on IAC, NOP and GA.
	GoAhead()

	// GMCP delivers one GMCP message. The value is opaque text and must
	// never be evaluated as code.
	GMCP(name, value string)

	// MSDP delivers one decoded MSDP variable. The value is a string,
	// []string or map[string]string.
	MSDP(name string, value interface{})

	// MSSP delivers one server status pair.
	MSSP(name, value string)

	// OptionNegotiated reports the outcome of an option negotiation.
	OptionNegotiated(option byte, accepted bool)

	// Subnegotiation reports every completed subnegotiation with its
	// unescaped payload, before the option codec runs.
	Subnegotiation(option byte, payload []byte)
}

// NegotiationState tracks the per-option outcome in the option table.
type NegotiationState int

const (
	OptionPending NegotiationState = iota
	OptionAccepted
	OptionRejected
)

type state int

const (
	stateNormal state = iota
	stateWaitCommand
	stateWaitOption
	stateWaitSubNeg
	stateWaitSbData
	stateWaitSe
)

type optionHandler func(cmd byte)
type subnegHandler func(payload []byte)

// Classifier is the telnet negotiation state machine. It consumes raw bytes
// from the connection one at a time and splits them into plain data and
// negotiation traffic. It never blocks: a whole inbound chunk is classified
// before Receive returns.
type Classifier struct {
	cfg    *config.Config
	conn   io.Writer
	sink   Sink
	logger zerolog.Logger

	state    state
	command  byte   // WILL/WONT/DO/DONT remembered from WaitCommand
	sbOption byte   // option remembered from WaitSubNegotiation
	sbBuf    []byte // in-progress subnegotiation, IAC SB ... IAC SE inclusive

	options  map[byte]NegotiationState
	encoding string

	// TTYPE/MTTS cycle position: 0 client name, 1 terminal type, 2 features.
	mttsIndex int

	msdp map[string]interface{}
	mssp map[string]string

	handlers    map[byte]optionHandler
	subHandlers map[byte]subnegHandler
}

// NewClassifier creates a classifier writing negotiation replies to conn and
// feeding decoded output to sink.
func NewClassifier(cfg *config.Config, conn io.Writer, sink Sink) *Classifier {
	c := &Classifier{
		cfg:      cfg,
		conn:     conn,
		sink:     sink,
		logger:   logging.GetLogger("telnet"),
		options:  make(map[byte]NegotiationState),
		encoding: cfg.Server.DefaultEncoding,
		msdp:     make(map[string]interface{}),
		mssp:     make(map[string]string),
	}

	c.handlers = map[byte]optionHandler{
		OptSGA:     c.handleSGA,
		OptEcho:    c.handleEcho,
		OptCharset: c.handleCharset,
		OptTTYPE:   c.handleTTYPE,
		OptNAWS:    c.handleNAWS,
		OptMNES:    c.handleMNES,
		OptGMCP:    c.handleGMCP,
		OptMSDP:    c.handleMSDP,
		OptMSSP:    c.handleMSSP,
		OptMCCP2:   c.handleMCCP2,
		OptMCCP3:   c.handleMCCP3,
		OptMSP:     c.handleMSP,
		OptMXP:     c.handleMXP,
	}
	c.subHandlers = map[byte]subnegHandler{
		OptCharset: c.handleCharsetSB,
		OptTTYPE:   c.handleTTYPESB,
		OptMNES:    c.handleMNESSB,
		OptGMCP:    c.handleGMCPSB,
		OptMSDP:    c.handleMSDPSB,
		OptMSSP:    c.handleMSSPSB,
	}

	return c
}

// Reset returns the state machine to Normal and drops all negotiated state.
// No subnegotiation survives a reconnect.
func (c *Classifier) Reset() {
	c.state = stateNormal
	c.command = 0
	c.sbOption = 0
	c.sbBuf = nil
	c.mttsIndex = 0
	c.options = make(map[byte]NegotiationState)
	c.encoding = c.cfg.Server.DefaultEncoding
	c.msdp = make(map[string]interface{})
	c.mssp = make(map[string]string)
}

// Encoding returns the currently negotiated character encoding.
func (c *Classifier) Encoding() string {
	return c.encoding
}

// OptionState returns the negotiation outcome recorded for an option.
func (c *Classifier) OptionState(opt byte) NegotiationState {
	return c.options[opt]
}

// MSDPValues returns the accumulated MSDP variable table.
func (c *Classifier) MSDPValues() map[string]interface{} {
	return c.msdp
}

// MSSPValues returns the accumulated MSSP status table.
func (c *Classifier) MSSPValues() map[string]string {
	return c.mssp
}

// Receive classifies an inbound chunk byte by byte.
func (c *Classifier) Receive(data []byte) {
	for _, b := range data {
		c.feed(b)
	}
}

func (c *Classifier) feed(b byte) {
	switch c.state {
	case stateNormal:
		if b == IAC {
			c.state = stateWaitCommand
			c.sink.GoAhead()
		} else {
			c.sink.Data(b)
		}

	case stateWaitCommand:
		switch b {
		case WILL, WONT, DO, DONT:
			c.command = b
			c.state = stateWaitOption
		case SB:
			c.sbBuf = append(c.sbBuf[:0], IAC, SB)
			c.state = stateWaitSubNeg
		case NOP, GA:
			// NOP and GA are both treated as a flush signal.
			c.logger.Debug().Str("command", CommandName(b)).Msg("go-ahead from server")
			c.state = stateNormal
			c.sink.GoAhead()
		default:
			c.logger.Error().Str("command", CommandName(b)).Msg("illegal byte after IAC, resetting to normal")
			c.state = stateNormal
		}

	case stateWaitOption:
		if handler, ok := c.handlers[b]; ok {
			c.logger.Debug().
				Str("command", CommandName(c.command)).
				Str("option", OptionName(b)).
				Msg("option negotiation")
			handler(c.command)
		} else {
			c.logger.Debug().
				Str("command", CommandName(c.command)).
				Str("option", OptionName(b)).
				Msg("unsupported option, rejecting")
			c.rejectOption(c.command, b)
		}
		c.state = stateNormal

	case stateWaitSubNeg:
		if b == IAC {
			c.logger.Error().Msg("IAC while waiting for subnegotiation option, discarding")
			c.sbBuf = nil
			c.state = stateNormal
			return
		}
		c.sbOption = b
		c.sbBuf = append(c.sbBuf, b)
		c.state = stateWaitSbData

	case stateWaitSbData:
		c.sbBuf = append(c.sbBuf, b)
		if b == IAC {
			// Ambiguous: either an escaped data byte or the terminator.
			c.state = stateWaitSe
		}

	case stateWaitSe:
		c.sbBuf = append(c.sbBuf, b)
		if b == SE {
			c.state = stateNormal
			c.dispatchSubneg()
		} else {
			// The IAC was payload data; IAC IAC collapses on extraction.
			c.state = stateWaitSbData
		}
	}
}

// dispatchSubneg hands one complete subnegotiation to its codec. The buffer
// always starts with IAC SB <option> and ends with IAC SE here.
func (c *Classifier) dispatchSubneg() {
	payload := unescapeIAC(c.sbBuf[3 : len(c.sbBuf)-2])
	c.sbBuf = nil

	c.sink.Subnegotiation(c.sbOption, payload)

	handler, ok := c.subHandlers[c.sbOption]
	if !ok {
		c.logger.Debug().
			Str("option", OptionName(c.sbOption)).
			Int("bytes", len(payload)).
			Msg("subnegotiation for option without codec, discarding")
		return
	}
	handler(payload)
}

// write sends raw negotiation bytes back to the connection.
func (c *Classifier) write(data []byte) {
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write(data); err != nil {
		c.logger.Warn().Err(err).Msg("failed to write negotiation reply")
	}
}

// writeNegotiation sends a three byte IAC <cmd> <option> reply.
func (c *Classifier) writeNegotiation(cmd, opt byte) {
	c.write([]byte{IAC, cmd, opt})
}

// writeSubneg frames and sends a subnegotiation, escaping IAC bytes in the
// payload.
func (c *Classifier) writeSubneg(opt byte, payload []byte) {
	buf := make([]byte, 0, len(payload)+5)
	buf = append(buf, IAC, SB, opt)
	buf = append(buf, escapeIAC(payload)...)
	buf = append(buf, IAC, SE)
	c.write(buf)
}

// escapeIAC doubles IAC bytes for outbound subnegotiation payloads.
func escapeIAC(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		out = append(out, b)
		if b == IAC {
			out = append(out, IAC)
		}
	}
	return out
}

// unescapeIAC collapses doubled IAC bytes in a received payload.
func unescapeIAC(data []byte) []byte {
	out := make([]byte, 0, len(data))
	escaped := false
	for _, b := range data {
		if escaped {
			escaped = false
			if b == IAC {
				out = append(out, IAC)
				continue
			}
			out = append(out, IAC, b)
			continue
		}
		if b == IAC {
			escaped = true
			continue
		}
		out = append(out, b)
	}
	if escaped {
		out = append(out, IAC)
	}
	return out
}
