package main

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/surecart/licensing-sdk/pkg/buildversion"
)

func TestRootCmd_Commands(t *testing.T) {
	cmd := RootCmd()

	names := []string{}
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"api", "activate", "deactivate", "status", "check-update", "mock-server", "version"}, names)
	require.NotNil(t, cmd.PersistentFlags().Lookup("config-file"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
}

func TestLoadConfig_Missing(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	_, err := loadConfig()
	require.ErrorContains(t, err, "config file must be specified")
}

func TestActivateCmd_RequiresKey(t *testing.T) {
	cmd := RootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"activate"})

	require.Error(t, cmd.Execute())
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
		wantErr  bool
	}{
		{
			name:     "text",
			args:     []string{"version"},
			contains: "SureCart licensing SDK " + buildversion.Version(),
		},
		{
			name:     "short",
			args:     []string{"version", "--short"},
			contains: buildversion.Version() + "\n",
		},
		{
			name:     "json",
			args:     []string{"version", "-o", "json"},
			contains: `"sdkHeader":"X-SURECART-WP-LICENSING-SDK-VERSION"`,
		},
		{
			name:     "yaml",
			args:     []string{"version", "-o", "yaml"},
			contains: "sdkHeader: X-SURECART-WP-LICENSING-SDK-VERSION",
		},
		{
			name:    "unsupported format",
			args:    []string{"version", "-o", "xml"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := RootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Contains(t, out.String(), tt.contains)
		})
	}
}

func TestDisplayKey(t *testing.T) {
	require.Equal(t, "(none)", displayKey(""))
	require.Equal(t, "****1234", displayKey("abcd-1234"))
}
