package modules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/command"
	"github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/testutil"
)

// writeResourceFile writes content under ctx's play basedir at rel
// (e.g. "files/app.conf"), for tests exercising resource.Resolve.
func writeResourceFile(t *testing.T, ctx *context.Context, rel, content string) error {
	t.Helper()
	path := filepath.Join(ctx.PlayBasedir(), rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func decodeArgs(t *testing.T, yamlStr string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(yamlStr), &doc))
	require.Len(t, doc.Content, 1)
	return doc.Content[0]
}

func dryContext(t *testing.T) *context.Context {
	t.Helper()
	return context.New(t.TempDir(), command.NewLocal(nil, true))
}

// nonDryContext builds a live (non-dry) local context and swaps
// command.DefaultRunner for a FakeRunner for the duration of the
// test, so a module's real argv reaches the runner instead of being
// substituted with `true`.
func nonDryContext(t *testing.T) (*context.Context, *testutil.FakeRunner) {
	t.Helper()
	fake := testutil.NewFakeRunner(t)
	prev := command.DefaultRunner
	command.DefaultRunner = fake
	t.Cleanup(func() { command.DefaultRunner = prev })
	return context.New(t.TempDir(), command.NewLocal(nil, false)), fake
}

func TestCopyWithContentBuildsInstallArgvFromStdin(t *testing.T) {
	ctx, fake := nonDryContext(t)
	fake.ExpectPattern(`^install -o deploy -g deploy -m 0644 /dev/stdin /etc/app\.conf <<\d+ bytes on stdin>>$`, nil)

	_, err := Copy(ctx, decodeArgs(t, "dest: /etc/app.conf\ncontent: hello world\nowner: deploy\ngroup: deploy\nmode: \"0644\"\n"))
	require.NoError(t, err)
	require.Len(t, fake.Calls(), 1)
}

func TestCopyWithRemoteSrcBuildsInstallArgvWithoutPipe(t *testing.T) {
	ctx, fake := nonDryContext(t)
	fake.Expect("install /tmp/already-there /etc/app.conf", nil)

	_, err := Copy(ctx, decodeArgs(t, "dest: /etc/app.conf\nsrc: /tmp/already-there\nremote_src: true\n"))
	require.NoError(t, err)
}

func TestCopyWithLocalSrcResolvesAndPipesFileContents(t *testing.T) {
	ctx, fake := nonDryContext(t)
	require.NoError(t, writeResourceFile(t, ctx, "files/app.conf", "port=8080"))
	fake.ExpectPattern(`^install /dev/stdin /etc/app\.conf <<\d+ bytes on stdin>>$`, nil)

	_, err := Copy(ctx, decodeArgs(t, "dest: /etc/app.conf\nsrc: app.conf\n"))
	require.NoError(t, err)
}

func TestCopyRequiresDest(t *testing.T) {
	ctx := dryContext(t)
	_, err := Copy(ctx, decodeArgs(t, "content: hello\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dest")
}

func TestCopyRequiresSrcOrContent(t *testing.T) {
	ctx := dryContext(t)
	_, err := Copy(ctx, decodeArgs(t, "dest: /etc/app.conf\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "src or content")
}

func TestCopyWithContentDryRun(t *testing.T) {
	ctx := dryContext(t)
	_, err := Copy(ctx, decodeArgs(t, "dest: /etc/app.conf\ncontent: hello world\n"))
	require.NoError(t, err)
}

func TestCopyWithRemoteSrcDryRun(t *testing.T) {
	ctx := dryContext(t)
	_, err := Copy(ctx, decodeArgs(t, "dest: /etc/app.conf\nsrc: /tmp/already-there\nremote_src: true\n"))
	require.NoError(t, err)
}
