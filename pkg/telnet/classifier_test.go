package telnet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/gomud/pkg/config"
)

// recordingSink captures everything the classifier emits.
type recordingSink struct {
	data      []byte
	goAheads  int
	gmcp      []atom
	msdp      map[string]interface{}
	mssp      map[string]string
	options   map[byte]bool
	subnegs   []subnegRecord
}

type atom struct{ name, value string }

type subnegRecord struct {
	option  byte
	payload []byte
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		msdp:    make(map[string]interface{}),
		mssp:    make(map[string]string),
		options: make(map[byte]bool),
	}
}

func (s *recordingSink) Data(b byte)     { s.data = append(s.data, b) }
func (s *recordingSink) GoAhead()        { s.goAheads++ }
func (s *recordingSink) GMCP(n, v string) { s.gmcp = append(s.gmcp, atom{n, v}) }
func (s *recordingSink) MSDP(n string, v interface{}) { s.msdp[n] = v }
func (s *recordingSink) MSSP(n, v string)             { s.mssp[n] = v }
func (s *recordingSink) OptionNegotiated(opt byte, accepted bool) {
	s.options[opt] = accepted
}
func (s *recordingSink) Subnegotiation(opt byte, payload []byte) {
	cp := append([]byte(nil), payload...)
	s.subnegs = append(s.subnegs, subnegRecord{opt, cp})
}

func newTestClassifier(t *testing.T) (*Classifier, *recordingSink, *bytes.Buffer) {
	t.Helper()
	sink := newRecordingSink()
	conn := &bytes.Buffer{}
	return NewClassifier(config.Default(), conn, sink), sink, conn
}

func TestReceive_PlainData(t *testing.T) {
	c, sink, conn := newTestClassifier(t)
	c.Receive([]byte("hello world\n"))

	assert.Equal(t, []byte("hello world\n"), sink.data)
	assert.Zero(t, sink.goAheads)
	assert.Zero(t, conn.Len())
}

func TestReceive_GoAheadFlushes(t *testing.T) {
	c, sink, _ := newTestClassifier(t)
	c.Receive([]byte{'h', 'p', ':', ' ', IAC, GA})

	assert.Equal(t, []byte("hp: "), sink.data)
	// Once on seeing IAC, once on GA.
	assert.Equal(t, 2, sink.goAheads)
}

func TestReceive_NOPFlushesLikeGA(t *testing.T) {
	c, sink, _ := newTestClassifier(t)
	c.Receive([]byte{IAC, NOP})
	assert.Equal(t, 2, sink.goAheads)
}

func TestReceive_IllegalCommandResetsToNormal(t *testing.T) {
	c, sink, _ := newTestClassifier(t)
	// 0x42 is not a valid command after IAC; the stream must continue.
	c.Receive([]byte{IAC, 0x42, 'o', 'k'})
	assert.Equal(t, []byte("ok"), sink.data)
}

func TestReceive_SubnegotiationDispatchedOnce(t *testing.T) {
	c, sink, _ := newTestClassifier(t)

	payload := []byte("Core.Hello {}")
	var stream []byte
	stream = append(stream, IAC, SB, OptGMCP)
	stream = append(stream, payload...)
	stream = append(stream, IAC, SE)

	c.Receive(stream)

	require.Len(t, sink.subnegs, 1)
	assert.Equal(t, OptGMCP, sink.subnegs[0].option)
	assert.Equal(t, payload, sink.subnegs[0].payload)
}

func TestReceive_SubnegotiationSplitAcrossChunks(t *testing.T) {
	c, sink, _ := newTestClassifier(t)

	c.Receive([]byte{IAC, SB, OptGMCP, 'C', 'o'})
	require.Empty(t, sink.subnegs)
	c.Receive([]byte{'r', 'e', IAC})
	require.Empty(t, sink.subnegs)
	c.Receive([]byte{SE})

	require.Len(t, sink.subnegs, 1)
	assert.Equal(t, []byte("Core"), sink.subnegs[0].payload)
}

func TestReceive_EscapedIACInsidePayload(t *testing.T) {
	c, sink, _ := newTestClassifier(t)

	// IAC IAC inside the payload is a single literal 0xFF byte and must not
	// terminate the subnegotiation.
	c.Receive([]byte{IAC, SB, OptGMCP, 'a', IAC, IAC, 'b', IAC, SE})

	require.Len(t, sink.subnegs, 1)
	assert.Equal(t, []byte{'a', 0xFF, 'b'}, sink.subnegs[0].payload)
}

func TestReceive_IACInsteadOfSubnegOption(t *testing.T) {
	c, sink, _ := newTestClassifier(t)
	c.Receive([]byte{IAC, SB, IAC, 'x'})

	// The broken subnegotiation is discarded; 'x' flows as data again.
	assert.Empty(t, sink.subnegs)
	assert.Equal(t, []byte{'x'}, sink.data)
}

func TestNegotiation_AcceptConfigured(t *testing.T) {
	c, sink, conn := newTestClassifier(t)
	c.Receive([]byte{IAC, WILL, OptGMCP})

	assert.Equal(t, []byte{IAC, DO, OptGMCP}, conn.Bytes())
	assert.True(t, sink.options[OptGMCP])
	assert.Equal(t, OptionAccepted, c.OptionState(OptGMCP))
}

func TestNegotiation_RejectDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Server.GMCP = false
	sink := newRecordingSink()
	conn := &bytes.Buffer{}
	c := NewClassifier(cfg, conn, sink)

	c.Receive([]byte{IAC, WILL, OptGMCP})

	assert.Equal(t, []byte{IAC, DONT, OptGMCP}, conn.Bytes())
	assert.False(t, sink.options[OptGMCP])
	assert.Equal(t, OptionRejected, c.OptionState(OptGMCP))
}

func TestNegotiation_UnknownOptionRejected(t *testing.T) {
	c, _, conn := newTestClassifier(t)

	c.Receive([]byte{IAC, WILL, 0x63})
	assert.Equal(t, []byte{IAC, DONT, 0x63}, conn.Bytes())

	conn.Reset()
	c.Receive([]byte{IAC, DO, 0x63})
	assert.Equal(t, []byte{IAC, WONT, 0x63}, conn.Bytes())
}

func TestNegotiation_NAWSRepliesWithWindowSize(t *testing.T) {
	cfg := config.Default()
	cfg.Client.NawsWidth = 150
	cfg.Client.NawsHeight = 40
	sink := newRecordingSink()
	conn := &bytes.Buffer{}
	c := NewClassifier(cfg, conn, sink)

	c.Receive([]byte{IAC, DO, OptNAWS})

	want := []byte{IAC, WILL, OptNAWS}
	want = append(want, IAC, SB, OptNAWS, 0, 150, 0, 40, IAC, SE)
	assert.Equal(t, want, conn.Bytes())
}

func TestNegotiation_MSDPAcceptSendsListRequests(t *testing.T) {
	c, _, conn := newTestClassifier(t)
	c.Receive([]byte{IAC, WILL, OptMSDP})

	want := []byte{IAC, DO, OptMSDP}
	want = append(want, IAC, SB, OptMSDP, MSDPVar)
	want = append(want, "LIST"...)
	want = append(want, MSDPVal)
	want = append(want, "LISTS"...)
	want = append(want, IAC, SE)
	want = append(want, IAC, SB, OptMSDP, MSDPVar)
	want = append(want, "LIST"...)
	want = append(want, MSDPVal)
	want = append(want, "REPORTABLE_VARIABLES"...)
	want = append(want, IAC, SE)
	assert.Equal(t, want, conn.Bytes())
}

func TestReset_ClearsAllNegotiatedState(t *testing.T) {
	c, _, _ := newTestClassifier(t)

	c.Receive([]byte{IAC, WILL, OptGMCP})
	c.Receive([]byte{IAC, SB, OptMSSP, MSSPVar})
	require.Equal(t, OptionAccepted, c.OptionState(OptGMCP))

	c.Reset()

	assert.Equal(t, OptionPending, c.OptionState(OptGMCP))
	assert.Empty(t, c.MSDPValues())
	assert.Empty(t, c.MSSPValues())

	// State machine is back in normal; plain bytes flow again.
	sink := c.sink.(*recordingSink)
	sink.data = nil
	c.Receive([]byte("after"))
	assert.Equal(t, []byte("after"), sink.data)
}

func TestEscapeIAC(t *testing.T) {
	assert.Equal(t, []byte{0xFF, 0xFF, 1, 6, 2}, escapeIAC([]byte{0xFF, 1, 6, 2}))
	assert.Equal(t, []byte{1, 2, 3}, escapeIAC([]byte{1, 2, 3}))
}

func TestUnescapeIAC(t *testing.T) {
	assert.Equal(t, []byte{0xFF, 1, 6, 2}, unescapeIAC([]byte{0xFF, 0xFF, 1, 6, 2}))
	assert.Equal(t, []byte{1, 2, 3}, unescapeIAC([]byte{1, 2, 3}))
}
