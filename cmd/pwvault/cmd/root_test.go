package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"pwvault/internal/domain/entry"
)

type result struct {
	code   int
	out    string
	errOut string
}

// vault запускает команды против одного хранилища во временной директории.
type vault struct {
	t     *testing.T
	flags []string
}

func newVault(t *testing.T, driver string) *vault {
	t.Helper()
	color.NoColor = true
	t.Setenv("PWVAULT_KDF_ITERATIONS", "1000")
	t.Setenv("PWVAULT_APP_ENV", "prod")

	path := filepath.Join(t.TempDir(), "vault."+driver)
	return &vault{t: t, flags: []string{"--store", path, "--driver", driver}}
}

func (v *vault) run(stdin string, args ...string) result {
	v.t.Helper()
	var out, errOut bytes.Buffer
	code := Run(context.Background(), append(args, v.flags...), strings.NewReader(stdin), &out, &errOut)
	return result{code: code, out: out.String(), errOut: errOut.String()}
}

func TestRun_EmailScenario(t *testing.T) {
	for _, driver := range []string{"json", "sqlite", "bolt"} {
		t.Run(driver, func(t *testing.T) {
			v := newVault(t, driver)

			res := v.run("master1\n", "generate", "email", "p@ssw0rd!")
			require.Equal(t, exitOK, res.code, res.errOut)
			assert.Equal(t, "Password for 'email' stored successfully.\n", res.out)
			assert.Contains(t, res.errOut, "Enter master password: ")

			res = v.run("master1\n", "retrieve", "email")
			require.Equal(t, exitOK, res.code, res.errOut)
			lines := strings.Split(strings.TrimSpace(res.out), "\n")
			require.Len(t, lines, 3)
			assert.Equal(t, "Password for 'email': p@ssw0rd!", lines[0])
			assert.True(t, strings.HasPrefix(lines[1], "Salt: "))
			assert.True(t, strings.HasPrefix(lines[2], "Encrypted password: "))

			res = v.run("master2\n", "retrieve", "email")
			assert.Equal(t, exitError, res.code)
			assert.Empty(t, res.out)
			assert.Contains(t, res.errOut, "Error: ")
			assert.Contains(t, res.errOut, "wrong master password")
			assert.NotContains(t, res.errOut, "p@ssw0rd!")

			res = v.run("master1\n", "delete", "email")
			require.Equal(t, exitOK, res.code, res.errOut)
			assert.Equal(t, "Password for 'email' deleted successfully.\n", res.out)

			res = v.run("master1\n", "retrieve", "email")
			assert.Equal(t, exitError, res.code)
			assert.Contains(t, res.errOut, "no password found for title 'email'")
		})
	}
}

func TestRun_DeleteMissing(t *testing.T) {
	v := newVault(t, "json")

	res := v.run("master1\n", "delete", "nope")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.errOut, "no password found for title 'nope'")
	assert.Empty(t, res.out)
}

func TestRun_List(t *testing.T) {
	v := newVault(t, "json")

	res := v.run("anything\n", "list")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.Equal(t, "Stored passwords:\n", res.out)

	for _, title := range []string{"github", "bank", "email"} {
		require.Equal(t, exitOK, v.run("master1\n", "generate", title, "Secret-123!").code)
	}

	// Мастер-пароль запрашивается, но не проверяется.
	res = v.run("not-the-master\n", "list")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.Equal(t, "Stored passwords:\n- bank\n- email\n- github\n", res.out)

	res = v.run("master1\n", "list", "-o", "json")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.JSONEq(t, `{"titles":["bank","email","github"]}`, res.out)

	res = v.run("master1\n", "list", "--output", "yaml")
	require.Equal(t, exitOK, res.code, res.errOut)
	var listed titlesOutput
	require.NoError(t, yaml.Unmarshal([]byte(res.out), &listed))
	assert.Equal(t, []string{"bank", "email", "github"}, listed.Titles)
}

func TestRun_RetrieveStructuredOutput(t *testing.T) {
	v := newVault(t, "json")
	require.Equal(t, exitOK, v.run("master1\n", "generate", "email", "p@ssw0rd!").code)

	res := v.run("master1\n", "retrieve", "email", "-o", "json")
	require.Equal(t, exitOK, res.code, res.errOut)
	var fromJSON entry.Retrieved
	require.NoError(t, json.Unmarshal([]byte(res.out), &fromJSON))
	assert.Equal(t, "email", fromJSON.Title)
	assert.Equal(t, "p@ssw0rd!", fromJSON.Secret)
	assert.NotEmpty(t, fromJSON.Salt)
	assert.NotEmpty(t, fromJSON.Ciphertext)

	res = v.run("master1\n", "retrieve", "email", "-o", "yaml")
	require.Equal(t, exitOK, res.code, res.errOut)
	var fromYAML entry.Retrieved
	require.NoError(t, yaml.Unmarshal([]byte(res.out), &fromYAML))
	assert.Equal(t, fromJSON, fromYAML)
}

func TestRun_ReplaceEntry(t *testing.T) {
	v := newVault(t, "json")
	require.Equal(t, exitOK, v.run("master1\n", "generate", "email", "old-Secret-1!").code)
	require.Equal(t, exitOK, v.run("master2\n", "generate", "email", "new-Secret-2!").code)

	res := v.run("master1\n", "retrieve", "email")
	assert.Equal(t, exitError, res.code)

	res = v.run("master2\n", "retrieve", "email")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.Contains(t, res.out, "Password for 'email': new-Secret-2!\n")
}

func TestRun_EmptyMasterPassword(t *testing.T) {
	v := newVault(t, "json")
	require.Equal(t, exitOK, v.run("\n", "generate", "wifi", "hunter2-Hunter2!").code)

	res := v.run("\n", "retrieve", "wifi")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.Contains(t, res.out, "Password for 'wifi': hunter2-Hunter2!\n")
}

func TestRun_NoMasterPassword(t *testing.T) {
	v := newVault(t, "json")

	res := v.run("", "generate", "email", "secret")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.errOut, errNoInput.Error())
}

func TestRun_GenerateRandom(t *testing.T) {
	v := newVault(t, "json")

	res := v.run("master1\n", "generate", "bank", "--length", "24")
	require.Equal(t, exitOK, res.code, res.errOut)
	generated := generatedSecret(t, res.out)
	assert.Len(t, generated, 24)
	assert.NotContains(t, res.errOut, "weak")

	res = v.run("master1\n", "retrieve", "bank")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.Contains(t, res.out, "Password for 'bank': "+generated+"\n")

	res = v.run("master1\n", "generate", "disk", "--words", "5")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.Len(t, strings.Fields(generatedSecret(t, res.out)), 5)
}

func generatedSecret(t *testing.T, out string) string {
	t.Helper()
	const prefix = "Generated password: "
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	t.Fatalf("no generated password in %q", out)
	return ""
}

func TestRun_GenerateRejectsInvalidUTF8(t *testing.T) {
	v := newVault(t, "json")

	res := v.run("master1\n", "generate", "latin1", "caf\xe9")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.errOut, "not valid UTF-8")
	assert.Empty(t, res.out)

	res = v.run("master1\n", "list")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.Equal(t, "Stored passwords:\n", res.out)
}

func TestRun_WeakPasswordWarning(t *testing.T) {
	v := newVault(t, "json")

	res := v.run("master1\n", "generate", "pin", "1234")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.Contains(t, res.errOut, "Warning: the password for 'pin' (1**4) is weak")
	assert.NotContains(t, res.errOut, "1234")
	assert.Equal(t, "Password for 'pin' stored successfully.\n", res.out)
}

func TestRun_InterruptedAtPrompt(t *testing.T) {
	v := newVault(t, "json")
	require.Equal(t, exitOK, v.run("master1\n", "generate", "email", "p@ssw0rd!").code)

	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	var out, errOut bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- Run(ctx, append([]string{"retrieve", "email"}, v.flags...), in, &out, &errOut)
	}()

	select {
	case code := <-done:
		assert.Equal(t, exitInterrupted, code)
		assert.Contains(t, errOut.String(), "Error: interrupted")
		assert.Empty(t, out.String())
	case <-time.After(5 * time.Second):
		t.Fatal("retrieve kept waiting for a password after cancel")
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"fetch", "email"}},
		{"generate without secret", []string{"generate", "email"}},
		{"generate too many args", []string{"generate", "email", "a", "b"}},
		{"generate secret and length", []string{"generate", "email", "secret", "--length", "20"}},
		{"generate length and words", []string{"generate", "email", "--length", "20", "--words", "5"}},
		{"generate length out of range", []string{"generate", "email", "--length", "4"}},
		{"generate empty title", []string{"generate", "", "secret"}},
		{"retrieve without title", []string{"retrieve"}},
		{"retrieve two titles", []string{"retrieve", "a", "b"}},
		{"retrieve bad format", []string{"retrieve", "email", "-o", "xml"}},
		{"list with args", []string{"list", "email"}},
		{"delete without title", []string{"delete"}},
		{"unknown flag", []string{"list", "--bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newVault(t, "json")
			res := v.run("master1\n", tt.args...)
			assert.Equal(t, exitUsage, res.code)
			assert.Contains(t, res.errOut, "Error: ")
			assert.Contains(t, res.errOut, "Usage:")
			assert.Empty(t, res.out)
		})
	}
}

func TestRun_Help(t *testing.T) {
	v := newVault(t, "json")

	res := v.run("", "--help")
	assert.Equal(t, exitOK, res.code)
	for _, name := range []string{"generate", "retrieve", "list", "delete"} {
		assert.Contains(t, res.out, name)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	v := newVault(t, "json")
	t.Setenv("PWVAULT_KDF_ITERATIONS", "0")

	res := v.run("master1\n", "list")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.errOut, "invalid configuration")
}

func TestRun_UnknownDriver(t *testing.T) {
	v := newVault(t, "json")
	v.flags = append(v.flags, "--driver", "redis")

	res := v.run("master1\n", "list")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.errOut, "store_driver")
}

func TestRun_MalformedStore(t *testing.T) {
	v := newVault(t, "json")
	path := v.flags[1]
	require.NoError(t, writeFile(path, `{"email": {"salt": "a", "iv": "b"}}`))

	res := v.run("master1\n", "retrieve", "email")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.errOut, "malformed entry")

	res = v.run("master1\n", "list")
	require.Equal(t, exitOK, res.code, res.errOut)
	assert.Equal(t, "Stored passwords:\n- email\n", res.out)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
