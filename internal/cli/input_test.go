package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func fakeTerminal(t *testing.T, tty bool, pw []byte, err error) {
	t.Helper()
	origRead, origTTY := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTTY })

	isTerminal = func(int) bool { return tty }
	readPassword = func(int) ([]byte, error) { return pw, err }
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name: ", out.String())
}

func TestGetSimpleText_EOF(t *testing.T) {
	var out bytes.Buffer

	got, err := GetSimpleText(rdr("lastline"), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name", &out)
	require.Error(t, err)
}

func TestGetPassword_Terminal(t *testing.T) {
	fakeTerminal(t, true, []byte("s3cret"), nil)

	var out bytes.Buffer
	pw, err := GetPassword(rdr("ignored\n"), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Equal(t, "Password: \n", out.String())
}

func TestGetPassword_TerminalError(t *testing.T) {
	fakeTerminal(t, true, nil, errors.New("boom"))

	var out bytes.Buffer
	_, err := GetPassword(rdr(""), "Password", &out)
	require.Error(t, err)
}

func TestGetPassword_Piped(t *testing.T) {
	fakeTerminal(t, false, nil, errors.New("must not be called"))

	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"plain", "from-pipe\n", []byte("from-pipe")},
		{"blanks kept", "  p@ss \t\n", []byte("  p@ss \t")},
		{"crlf", " pw \r\n", []byte(" pw ")},
		{"no newline at eof", " last ", []byte(" last ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			pw, err := GetPassword(rdr(tt.in), "Password", &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pw)
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.in), func(t *testing.T) {
			var out bytes.Buffer
			got, err := Confirm(rdr(tt.in), "Delete?", &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Delete? (y/N): ", out.String())
		})
	}
}

func TestTerminalPrompter(t *testing.T) {
	fakeTerminal(t, false, nil, nil)

	var out bytes.Buffer
	p := &terminalPrompter{reader: rdr("pw\n"), out: &out}

	got, err := p.PromptSecret(context.Background(), "Master password")
	require.NoError(t, err)
	assert.Equal(t, []byte("pw"), got)

	p.Notify("hello")
	assert.Equal(t, "Master password: hello\n", out.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.PromptSecret(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}
