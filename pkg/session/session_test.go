package session

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/gomud/pkg/command"
	"github.com/arthur-debert/gomud/pkg/config"
	"github.com/arthur-debert/gomud/pkg/match"
	"github.com/arthur-debert/gomud/pkg/telnet"
)

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	s := New(context.Background(), config.Default(), "test", "localhost", 4000, out)
	return s, out
}

// attachPipe wires the session to an in-memory connection and returns the
// far end, playing the server.
func attachPipe(t *testing.T, s *Session) net.Conn {
	t.Helper()
	near, far := net.Pipe()
	s.mu.Lock()
	s.conn = near
	s.connected = true
	s.mu.Unlock()
	t.Cleanup(func() {
		near.Close()
		far.Close()
	})
	return far
}

func mustAddTrigger(t *testing.T, s *Session, pattern string, opts ...match.Option) *match.Matcher {
	t.Helper()
	tr, err := match.NewTrigger([]string{pattern}, opts...)
	require.NoError(t, err)
	require.NoError(t, s.AddTrigger(tr))
	return tr
}

func TestHandleLine_DisplaysLine(t *testing.T) {
	s, out := newTestSession(t)
	s.handleLine("a goblin arrives")
	assert.Equal(t, "a goblin arrives\n", out.String())
}

func TestHandleLine_SetsLineVariables(t *testing.T) {
	s, _ := newTestSession(t)
	s.handleLine("\x1b[31mYou are bleeding.\x1b[0m")

	assert.Equal(t, "You are bleeding.", s.Variable("%line", ""))
	assert.Equal(t, "\x1b[31mYou are bleeding.\x1b[0m", s.Variable("%raw", ""))
}

func TestDispatch_PriorityOrder(t *testing.T) {
	s, _ := newTestSession(t)
	var fired []string

	mustAddTrigger(t, s, `^the orc dies`,
		match.WithID("low"), match.WithPriority(50),
		match.WithOnSuccess(func(match.State) { fired = append(fired, "low") }))
	mustAddTrigger(t, s, `^the orc dies`,
		match.WithID("high"), match.WithPriority(10),
		match.WithOnSuccess(func(match.State) { fired = append(fired, "high") }))

	s.handleLine("the orc dies.")

	// Without keepEval only the higher-priority trigger sees the line.
	assert.Equal(t, []string{"high"}, fired)
}

func TestDispatch_KeepEvalContinues(t *testing.T) {
	s, _ := newTestSession(t)
	var fired []string

	mustAddTrigger(t, s, `^the orc dies`,
		match.WithID("high"), match.WithPriority(10), match.WithKeepEval(),
		match.WithOnSuccess(func(match.State) { fired = append(fired, "high") }))
	mustAddTrigger(t, s, `^the orc dies`,
		match.WithID("low"), match.WithPriority(50),
		match.WithOnSuccess(func(match.State) { fired = append(fired, "low") }))

	s.handleLine("the orc dies.")
	assert.Equal(t, []string{"high", "low"}, fired)
}

func TestDispatch_OneShotRemoved(t *testing.T) {
	s, _ := newTestSession(t)
	count := 0

	mustAddTrigger(t, s, `^ding`,
		match.WithID("once"), match.WithOneShot(),
		match.WithOnSuccess(func(match.State) { count++ }))

	s.handleLine("ding")
	s.handleLine("ding")

	assert.Equal(t, 1, count)
	assert.False(t, s.triggers.Has("once"))
}

func TestDispatch_DisabledTriggerSkipped(t *testing.T) {
	s, _ := newTestSession(t)
	fired := false

	mustAddTrigger(t, s, `^ding`,
		match.WithEnabled(false),
		match.WithOnSuccess(func(match.State) { fired = true }))

	s.handleLine("ding")
	assert.False(t, fired)
}

func TestDispatch_PanickingCallbackIsContained(t *testing.T) {
	s, out := newTestSession(t)

	mustAddTrigger(t, s, `^boom`,
		match.WithID("bad"), match.WithKeepEval(),
		match.WithOnSuccess(func(match.State) { panic("script bug") }))
	fired := false
	mustAddTrigger(t, s, `^boom`,
		match.WithID("good"), match.WithPriority(200),
		match.WithOnSuccess(func(match.State) { fired = true }))

	s.handleLine("boom")

	assert.True(t, fired, "later triggers must still run")
	assert.Contains(t, out.String(), "script error")
}

func TestGagSuppressesDisplay(t *testing.T) {
	s, out := newTestSession(t)
	mustAddTrigger(t, s, `^spam`,
		match.WithOnSuccess(func(match.State) { s.Gag() }))

	s.handleLine("spam spam spam")
	s.handleLine("keep this")

	assert.Equal(t, "keep this\n", out.String())
}

func TestReplaceRewritesDisplay(t *testing.T) {
	s, out := newTestSession(t)
	mustAddTrigger(t, s, `^tells you`,
		match.WithOnSuccess(func(match.State) { s.Replace(">>> tell <<<") }))

	s.handleLine("tells you something")
	assert.Equal(t, ">>> tell <<<\n", out.String())
}

func TestDataAssemblesLines(t *testing.T) {
	s, out := newTestSession(t)
	for _, b := range []byte("first\r\nsecond\r\n") {
		s.Data(b)
	}
	assert.Equal(t, "first\nsecond\n", out.String())
}

func TestGoAheadFlushesPrompt(t *testing.T) {
	s, out := newTestSession(t)
	for _, b := range []byte("hp 100>") {
		s.Data(b)
	}
	s.GoAhead()
	assert.Equal(t, "hp 100>\n", out.String())
}

func TestWriteLine_SeparatorSplit(t *testing.T) {
	s, _ := newTestSession(t)
	far := attachPipe(t, s)

	errCh := make(chan error, 1)
	go func() { errCh <- s.WriteLine("n;open door;e") }()

	reader := bufio.NewReader(far)
	var lines []string
	for i := 0; i < 3; i++ {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		lines = append(lines, line)
	}

	require.NoError(t, <-errCh)
	assert.Equal(t, []string{"n\n", "open door\n", "e\n"}, lines)
}

func TestWriteLine_DisconnectedFails(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Error(t, s.WriteLine("look"))
}

func TestGMCP_RoutedToNamedTrigger(t *testing.T) {
	s, _ := newTestSession(t)

	var got string
	g := match.NewGMCPTrigger("Char.Vitals",
		match.WithOnSuccess(func(st match.State) { got = st.Line }))
	require.NoError(t, s.AddGMCPTrigger(g))

	s.GMCP("Char.Vitals", `{"hp":100}`)
	assert.Equal(t, `{"hp":100}`, got)

	// Unknown names are ignored.
	s.GMCP("Room.Info", "{}")
}

func TestMSDP_StoredAsVariable(t *testing.T) {
	s, _ := newTestSession(t)
	s.MSDP("HEALTH", "100")
	assert.Equal(t, "100", s.Variable("HEALTH", ""))
}

func TestOptionNegotiated_StoredAsVariable(t *testing.T) {
	s, _ := newTestSession(t)
	s.OptionNegotiated(telnet.OptGMCP, true)
	assert.Equal(t, "true", s.Variable("%gmcp", ""))
}

func TestMXPSupportProbeAnswered(t *testing.T) {
	s, _ := newTestSession(t)
	far := attachPipe(t, s)

	go s.Subnegotiation(telnet.OptMXP, []byte("<SUPPORT>"))

	line, err := bufio.NewReader(far).ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "<SUPPORTS")
}

func TestEnableGroup(t *testing.T) {
	s, _ := newTestSession(t)
	mustAddTrigger(t, s, `^a$`, match.WithID("t1"), match.WithGroup("combat"))
	mustAddTrigger(t, s, `^b$`, match.WithID("t2"), match.WithGroup("combat"))
	mustAddTrigger(t, s, `^c$`, match.WithID("t3"), match.WithGroup("other"))

	n := s.EnableGroup("combat", false)
	assert.Equal(t, 2, n)

	t1, err := s.Trigger("t1")
	require.NoError(t, err)
	assert.False(t, t1.Enabled)
	t3, err := s.Trigger("t3")
	require.NoError(t, err)
	assert.True(t, t3.Enabled)
}

func TestRemoveObject(t *testing.T) {
	s, _ := newTestSession(t)
	mustAddTrigger(t, s, `^a$`, match.WithID("t1"))

	require.NoError(t, s.RemoveObject("t1"))
	assert.Error(t, s.RemoveObject("t1"))
}

func TestNextID_UniquePerKind(t *testing.T) {
	s, _ := newTestSession(t)

	a := s.nextID(match.KindTrigger)
	b := s.nextID(match.KindTrigger)
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "tri_")
}

func TestAddTrigger_RejectsWrongKind(t *testing.T) {
	s, _ := newTestSession(t)
	al, err := match.NewAlias([]string{`^gp$`})
	require.NoError(t, err)
	assert.Error(t, s.AddTrigger(al))
}

func TestExec_SetsVariable(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Exec("#variable target orc"))

	require.Eventually(t, func() bool {
		return s.Variable("target", "") == "orc"
	}, time.Second, 5*time.Millisecond)
}

func TestExec_AliasConsumesInput(t *testing.T) {
	s, _ := newTestSession(t)
	far := attachPipe(t, s)

	var got match.State
	al, err := match.NewAlias([]string{`^gp (\w+)$`},
		match.WithOnSuccess(func(st match.State) { got = st }))
	require.NoError(t, err)
	require.NoError(t, s.AddAlias(al))

	// The alias consumes the input; nothing reaches the server, so the
	// far end of the pipe stays silent.
	go func() {
		buf := make([]byte, 64)
		far.Read(buf) //nolint:errcheck
	}()

	require.NoError(t, s.Exec("gp sword"))
	require.Eventually(t, func() bool {
		return got.Result == match.Success
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"sword"}, got.Wildcards)
}

func TestExec_UnaliasedInputIsSent(t *testing.T) {
	s, _ := newTestSession(t)
	far := attachPipe(t, s)

	lineCh := make(chan string, 1)
	go func() {
		line, err := bufio.NewReader(far).ReadString('\n')
		if err == nil {
			lineCh <- line
		}
	}()

	require.NoError(t, s.Exec("look"))

	select {
	case line := <-lineCh:
		assert.Equal(t, "look\n", line)
	case <-time.After(time.Second):
		t.Fatal("command was not sent")
	}
}

func TestExec_BadBlockReported(t *testing.T) {
	s, out := newTestSession(t)
	err := s.Exec("say }oops")
	require.Error(t, err)
	assert.Contains(t, out.String(), "[ERROR]")
}

func TestSimpleTrigger_RunsCode(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := s.NewSimpleTrigger([]string{`^HP: (\d+)$`}, "#variable hp %1")
	require.NoError(t, err)

	s.handleLine("HP: 42")

	require.Eventually(t, func() bool {
		return s.Variable("hp", "") == "42"
	}, time.Second, 5*time.Millisecond)
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "plain", StripANSI("\x1b[1;32mplain\x1b[0m"))
	assert.Equal(t, "untouched", StripANSI("untouched"))
}

func TestNewSimpleCommand_UsesConfiguredSettleDelay(t *testing.T) {
	s, _ := newTestSession(t)
	s.cfg.Client.SettleDelay = 5

	done, err := match.NewTrigger([]string{`^Done\.`}, match.WithID("done"), match.WithAsync())
	require.NoError(t, err)
	require.NoError(t, s.AddTrigger(done))

	c, err := s.NewSimpleCommand([]string{`^dig`},
		command.Triggers{Success: []command.Trigger{done}}, match.WithID("dig"))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Millisecond, c.SettleDelay)
	assert.True(t, s.commands.Has("dig"))
}

func TestEnableGroup_ConcurrentWithDispatch(t *testing.T) {
	s, _ := newTestSession(t)
	mustAddTrigger(t, s, `^tick`, match.WithID("tick"), match.WithGroup("pulse"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s.EnableGroup("pulse", i%2 == 0)
		}
	}()
	for i := 0; i < 200; i++ {
		s.handleLine("tick")
	}
	<-done

	s.EnableGroup("pulse", true)
	tr, err := s.Trigger("tick")
	require.NoError(t, err)
	assert.True(t, tr.IsEnabled())
}
