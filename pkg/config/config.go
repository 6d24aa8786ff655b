package config

// Config is the explicit configuration context handed to each component.
// Components hold a reference to it; updates go through Set on the loader
// rather than ad-hoc field mutation.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Client ClientConfig `koanf:"client"`
	MNES   map[string]string `koanf:"mnes"`
}

// ServerConfig holds per-protocol accept flags and wire conventions.
type ServerConfig struct {
	DefaultEncoding string `koanf:"default_encoding"`

	SGA   bool `koanf:"sga"`
	Echo  bool `koanf:"echo"`
	GMCP  bool `koanf:"gmcp"`
	MSDP  bool `koanf:"msdp"`
	MSSP  bool `koanf:"mssp"`
	MCCP2 bool `koanf:"mccp2"`
	MCCP3 bool `koanf:"mccp3"`
	MSP   bool `koanf:"msp"`
	MXP   bool `koanf:"mxp"`
}

// ClientConfig holds client-side behavior knobs.
type ClientConfig struct {
	NawsWidth  int `koanf:"naws_width"`
	NawsHeight int `koanf:"naws_height"`

	Seperator string `koanf:"seperator"`
	Newline   string `koanf:"newline"`

	// Interval is the delay in milliseconds between commands of an
	// asynchronously executed code block.
	Interval int `koanf:"interval"`

	// SettleDelay is the delay in milliseconds between arming a command's
	// waiter triggers and writing the command text.
	SettleDelay int `koanf:"settle_delay"`

	AutoReconnect bool `koanf:"auto_reconnect"`
	ReconnectWait int  `koanf:"reconnect_wait"`

	EchoInput bool `koanf:"echo_input"`
}

// AppName is the client name reported in TTYPE/MTTS and MNES negotiation.
const AppName = "GOMUD"

// AppVersion is reported in MNES CLIENT_VERSION.
const AppVersion = "0.2.0"

// MTTSFeatures is the MTTS bitmask reported in the third TTYPE cycle:
// ANSI, VT100, UTF-8, 256 COLORS, TRUECOLOR, MNES.
const MTTSFeatures = 783

// TerminalType is reported in the second TTYPE cycle.
const TerminalType = "XTERM"

// Default returns the built-in configuration, before any file or
// environment overrides.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			DefaultEncoding: "utf-8",
			SGA:             true,
			Echo:            false,
			GMCP:            true,
			MSDP:            true,
			MSSP:            true,
			MCCP2:           false,
			MCCP3:           false,
			MSP:             false,
			MXP:             false,
		},
		Client: ClientConfig{
			NawsWidth:     150,
			NawsHeight:    40,
			Seperator:     ";",
			Newline:       "\n",
			Interval:      10,
			SettleDelay:   100,
			AutoReconnect: false,
			ReconnectWait: 15,
			EchoInput:     false,
		},
		MNES: map[string]string{
			"CHARSET":        "utf-8",
			"CLIENT_NAME":    AppName,
			"CLIENT_VERSION": AppVersion,
		},
	}
}
