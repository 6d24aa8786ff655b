package telnet

// Option negotiation policy. Each handler receives the command byte
// (WILL/WONT/DO/DONT) and replies on the connection's write path. Whether an
// option is accepted is configuration driven; anything this client did not
// ask for is rejected with the mirror of the command class.

// rejectOption replies DONT to WILL/WONT and WONT to DO/DONT, and records
// the rejection in the option table.
func (c *Classifier) rejectOption(cmd, opt byte) {
	var ack byte
	switch cmd {
	case WILL, WONT:
		ack = DONT
	case DO, DONT:
		ack = WONT
	default:
		c.logger.Error().
			Str("command", CommandName(cmd)).
			Str("option", OptionName(opt)).
			Msg("reject entered with a non-negotiation command")
		return
	}

	c.options[opt] = OptionRejected
	c.writeNegotiation(ack, opt)
	c.sink.OptionNegotiated(opt, false)
	c.logger.Debug().
		Str("reply", CommandName(ack)).
		Str("option", OptionName(opt)).
		Msg("rejected negotiation")
}

// acceptRemote replies DO to a server WILL and records acceptance.
func (c *Classifier) acceptRemote(opt byte) {
	c.options[opt] = OptionAccepted
	c.writeNegotiation(DO, opt)
	c.sink.OptionNegotiated(opt, true)
	c.logger.Debug().Str("option", OptionName(opt)).Msg("accepted remote option")
}

// acceptLocal replies WILL to a server DO and records acceptance.
func (c *Classifier) acceptLocal(opt byte) {
	c.options[opt] = OptionAccepted
	c.writeNegotiation(WILL, opt)
	c.sink.OptionNegotiated(opt, true)
	c.logger.Debug().Str("option", OptionName(opt)).Msg("accepted local option")
}

// handleConfigured implements the accept-if-configured-true policy for
// server-offered options (WILL from the remote side).
func (c *Classifier) handleConfigured(cmd, opt byte, enabled bool) {
	if cmd != WILL {
		c.logger.Warn().
			Str("command", CommandName(cmd)).
			Str("option", OptionName(opt)).
			Msg("unhandled negotiation")
		return
	}
	if enabled {
		c.acceptRemote(opt)
	} else {
		c.rejectOption(cmd, opt)
	}
}

// SGA: in a full-duplex environment go-ahead signals carry no information,
// so suppressing them is agreed to by default.
func (c *Classifier) handleSGA(cmd byte) {
	c.handleConfigured(cmd, OptSGA, c.cfg.Server.SGA)
}

func (c *Classifier) handleEcho(cmd byte) {
	c.handleConfigured(cmd, OptEcho, c.cfg.Server.Echo)
}

// CHARSET: accept the negotiation and wait for the REQUEST subnegotiation.
func (c *Classifier) handleCharset(cmd byte) {
	if cmd != WILL {
		c.logger.Warn().Str("command", CommandName(cmd)).Msg("unhandled CHARSET negotiation")
		return
	}
	c.acceptRemote(OptCharset)
}

// TTYPE/MTTS: the server drives a three step SEND cycle answered in
// handleTTYPESB. Accepting resets the cycle position.
func (c *Classifier) handleTTYPE(cmd byte) {
	if cmd != DO {
		c.logger.Warn().Str("command", CommandName(cmd)).Msg("unhandled TTYPE negotiation")
		return
	}
	c.mttsIndex = 0
	c.acceptLocal(OptTTYPE)
}

// NAWS: reply WILL, then immediately send the window size subnegotiation.
// This client never negotiates NAWS on its own.
func (c *Classifier) handleNAWS(cmd byte) {
	if cmd != DO {
		c.logger.Warn().Str("command", CommandName(cmd)).Msg("unhandled NAWS negotiation")
		return
	}
	c.acceptLocal(OptNAWS)

	w, h := c.cfg.Client.NawsWidth, c.cfg.Client.NawsHeight
	c.writeSubneg(OptNAWS, []byte{byte(w >> 8), byte(w), byte(h >> 8), byte(h)})
	c.logger.Debug().Int("width", w).Int("height", h).Msg("sent NAWS window size")
}

// MNES: accept and wait for the server's SEND VAR subnegotiation.
func (c *Classifier) handleMNES(cmd byte) {
	if cmd != DO {
		c.logger.Warn().Str("command", CommandName(cmd)).Msg("unhandled MNES negotiation")
		return
	}
	c.acceptLocal(OptMNES)
}

func (c *Classifier) handleGMCP(cmd byte) {
	c.handleConfigured(cmd, OptGMCP, c.cfg.Server.GMCP)
}

// MSDP: on acceptance, immediately ask the server what it can report.
func (c *Classifier) handleMSDP(cmd byte) {
	if cmd != WILL {
		c.logger.Warn().Str("command", CommandName(cmd)).Msg("unhandled MSDP negotiation")
		return
	}
	if !c.cfg.Server.MSDP {
		c.rejectOption(cmd, OptMSDP)
		return
	}
	c.acceptRemote(OptMSDP)
	c.sendMSDP("LIST", "LISTS")
	c.sendMSDP("LIST", "REPORTABLE_VARIABLES")
}

// sendMSDP sends a VAR/VAL subnegotiation request.
func (c *Classifier) sendMSDP(name, value string) {
	payload := make([]byte, 0, len(name)+len(value)+2)
	payload = append(payload, MSDPVar)
	payload = append(payload, name...)
	payload = append(payload, MSDPVal)
	payload = append(payload, value...)
	c.writeSubneg(OptMSDP, payload)
	c.logger.Debug().Str("var", name).Str("val", value).Msg("sent MSDP request")
}

func (c *Classifier) handleMSSP(cmd byte) {
	c.handleConfigured(cmd, OptMSSP, c.cfg.Server.MSSP)
}

func (c *Classifier) handleMCCP2(cmd byte) {
	c.handleConfigured(cmd, OptMCCP2, c.cfg.Server.MCCP2)
}

func (c *Classifier) handleMCCP3(cmd byte) {
	c.handleConfigured(cmd, OptMCCP3, c.cfg.Server.MCCP3)
}

func (c *Classifier) handleMSP(cmd byte) {
	c.handleConfigured(cmd, OptMSP, c.cfg.Server.MSP)
}

func (c *Classifier) handleMXP(cmd byte) {
	c.handleConfigured(cmd, OptMXP, c.cfg.Server.MXP)
}
