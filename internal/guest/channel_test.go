package guest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeboxlab/safebox/internal/hostcmd"
)

type fakeRunner struct {
	calls []string
	reply hostcmd.Outcome
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) hostcmd.Outcome {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	return f.reply
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestChannel(f *fakeRunner) *Channel {
	return NewChannel(Target{User: "safebox", Port: 2222}, f.run, discard())
}

func TestTargetEndpoint(t *testing.T) {
	tgt := Target{User: "safebox", Port: 2222}
	assert.Equal(t, "safebox@127.0.0.1", tgt.Endpoint())
}

func TestProbeCommand(t *testing.T) {
	f := &fakeRunner{}
	ch := newTestChannel(f)

	out := ch.Probe(context.Background())
	assert.True(t, out.Ok())
	require.Len(t, f.calls, 1)
	call := f.calls[0]
	assert.True(t, strings.HasPrefix(call, "ssh "), call)
	assert.Contains(t, call, "ConnectTimeout=5")
	assert.Contains(t, call, "StrictHostKeyChecking=no")
	assert.Contains(t, call, "-p 2222 safebox@127.0.0.1 true")
}

func TestProbeStrictExitZero(t *testing.T) {
	f := &fakeRunner{reply: hostcmd.Outcome{ExitCode: 255, Stderr: "connection refused"}}
	ch := newTestChannel(f)
	assert.False(t, ch.Probe(context.Background()).Ok())
}

func TestUploadCommand(t *testing.T) {
	f := &fakeRunner{}
	ch := newTestChannel(f)

	ch.Upload(context.Background(), "/tmp/sample.bin", "/home/safebox/incoming/sample.bin")
	require.Len(t, f.calls, 1)
	call := f.calls[0]
	assert.True(t, strings.HasPrefix(call, "scp "), call)
	assert.Contains(t, call, "-P 2222")
	assert.Contains(t, call, "/tmp/sample.bin safebox@127.0.0.1:/home/safebox/incoming/sample.bin")
	assert.NotContains(t, call, "ConnectTimeout")
}

func TestTriggerCommand(t *testing.T) {
	f := &fakeRunner{}
	ch := newTestChannel(f)

	ch.Trigger(context.Background(), "/home/safebox/incoming/sample.bin", "/home/safebox/out", 120)
	require.Len(t, f.calls, 1)
	call := f.calls[0]
	assert.Contains(t, call, "nohup python3 /home/safebox/agent/agent.py")
	assert.Contains(t, call, "--file /home/safebox/incoming/sample.bin")
	assert.Contains(t, call, "--output /home/safebox/out")
	assert.Contains(t, call, "--timeout 120")
	assert.Contains(t, call, "> /home/safebox/out/agent-run.log 2>&1 &")
}

func TestDownloadCreatesLocalDirAndCopies(t *testing.T) {
	f := &fakeRunner{}
	ch := newTestChannel(f)
	localDir := filepath.Join(t.TempDir(), "reports")

	out := ch.Download(context.Background(), "/home/safebox/out", localDir)
	assert.True(t, out.Ok())
	assert.DirExists(t, localDir)
	require.Len(t, f.calls, 1)
	assert.Contains(t, f.calls[0], "safebox@127.0.0.1:/home/safebox/out/report-*.json "+localDir+"/")
}
