package telnet

// Telnet command bytes.
const (
	SE   byte = 0xF0 // subnegotiation end
	NOP  byte = 0xF1 // no operation
	GA   byte = 0xF9 // go ahead
	SB   byte = 0xFA // subnegotiation begin
	WILL byte = 0xFB
	WONT byte = 0xFC
	DO   byte = 0xFD
	DONT byte = 0xFE
	IAC  byte = 0xFF // interpret as command
)

// Telnet and MUD protocol option bytes.
//
// MTTS:  https://tintin.mudhalla.net/protocols/mtts/
// NAWS:  https://www.rfc-editor.org/rfc/rfc1073.html
// MNES:  https://tintin.mudhalla.net/protocols/mnes/
// GMCP:  https://tintin.mudhalla.net/protocols/gmcp/
// MSDP:  https://tintin.mudhalla.net/protocols/msdp/
// MSSP:  https://tintin.mudhalla.net/protocols/mssp/
// MCCP:  https://tintin.mudhalla.net/protocols/mccp/
// MSP:   http://www.zuggsoft.com/zmud/msp.htm
// MXP:   http://www.zuggsoft.com/zmud/mxp.htm
const (
	OptEcho    byte = 0x01
	OptSGA     byte = 0x03 // suppress go ahead, rfc858
	OptTTYPE   byte = 0x18 // terminal type / MTTS
	OptNAWS    byte = 0x1F // negotiate about window size
	OptCharset byte = 0x2A // rfc2066
	OptMNES    byte = 0x27 // MUD new-environ standard
	OptMSDP    byte = 0x45 // MUD server data protocol
	OptMSSP    byte = 0x46 // MUD server status protocol
	OptMCCP2   byte = 0x56 // MUD client compression protocol v2
	OptMCCP3   byte = 0x57 // MUD client compression protocol v3
	OptMSP     byte = 0x5A // MUD sound protocol
	OptMXP     byte = 0x5B // MUD extension protocol
	OptGMCP    byte = 0xC9 // generic MUD communication protocol
)

// CHARSET subnegotiation sub-codes, rfc2066.
const (
	CharsetRequest  byte = 1
	CharsetAccepted byte = 2
	CharsetRejected byte = 3
)

// TTYPE subnegotiation sub-codes.
const (
	TTypeIs   byte = 0
	TTypeSend byte = 1
)

// MNES subnegotiation sub-codes.
const (
	MNESIs   byte = 0
	MNESSend byte = 1
	MNESInfo byte = 2
	MNESVar  byte = 0
	MNESVal  byte = 1
)

// MSDP subnegotiation sub-codes.
const (
	MSDPVar        byte = 1
	MSDPVal        byte = 2
	MSDPTableOpen  byte = 3
	MSDPTableClose byte = 4
	MSDPArrayOpen  byte = 5
	MSDPArrayClose byte = 6
)

// MSSP subnegotiation sub-codes.
const (
	MSSPVar byte = 1
	MSSPVal byte = 2
)

var commandNames = map[byte]string{
	IAC:  "IAC",
	WILL: "WILL",
	WONT: "WONT",
	DO:   "DO",
	DONT: "DONT",
	SB:   "SB",
	SE:   "SE",
	NOP:  "NOP",
	GA:   "GA",
}

var optionNames = map[byte]string{
	OptSGA:     "SGA",
	OptEcho:    "ECHO",
	OptCharset: "CHARSET",
	OptTTYPE:   "TTYPE",
	OptNAWS:    "NAWS",
	OptMNES:    "MNES",
	OptGMCP:    "GMCP",
	OptMSDP:    "MSDP",
	OptMSSP:    "MSSP",
	OptMCCP2:   "MCCP2",
	OptMCCP3:   "MCCP3",
	OptMSP:     "MSP",
	OptMXP:     "MXP",
}

// CommandName returns the mnemonic for a telnet command byte, or its hex
// form for anything unnamed.
func CommandName(cmd byte) string {
	if name, ok := commandNames[cmd]; ok {
		return name
	}
	return hexByte(cmd)
}

// OptionName returns the mnemonic for a negotiation option byte, or its hex
// form for anything unnamed.
func OptionName(opt byte) string {
	if name, ok := optionNames[opt]; ok {
		return name
	}
	return hexByte(opt)
}

const hexDigits = "0123456789abcdef"

func hexByte(b byte) string {
	return "0x" + string([]byte{hexDigits[b>>4], hexDigits[b&0x0F]})
}
