package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDump(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "toml", args: []string{"config", "dump", "--config", "../etc/"}, want: "[Auth.OIDC]"},
		{name: "json", args: []string{"config", "dump", "--json", "--config", "../etc/"}, want: `"ClientID": "markstash"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer

			rootCmd.SetOut(&out)
			rootCmd.SetArgs(tc.args)

			require.NoError(t, rootCmd.Execute())
			assert.Contains(t, out.String(), tc.want)

			dumpJSON = false
		})
	}
}

func TestConfigDumpMissingFile(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"config", "dump", "--config", "./does-not-exist/"})

	require.Error(t, rootCmd.Execute())
}
