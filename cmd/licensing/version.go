package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/surecart/licensing-sdk/pkg/buildversion"
	"github.com/surecart/licensing-sdk/pkg/client"
	"gopkg.in/yaml.v2"
)

// BuildInfo describes this binary and the SDK version it reports to the licensing API.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	GitSHA    string `json:"gitSHA,omitempty" yaml:"gitSHA,omitempty"`
	BuildTime string `json:"buildTime,omitempty" yaml:"buildTime,omitempty"`
	SDKHeader string `json:"sdkHeader" yaml:"sdkHeader"`
}

func currentBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   buildversion.Version(),
		GitSHA:    buildversion.GitSHA(),
		BuildTime: buildversion.BuildTime(),
		SDKHeader: client.SDKVersionHeader,
	}
}

func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "version",
		Short:        "Print build information",
		Long:         `Print the SDK version sent to the licensing API, plus the git sha and build time when known`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			short, _ := cmd.Flags().GetBool("short")

			info := currentBuildInfo()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return nil
			}
			return writeBuildInfo(cmd.OutOrStdout(), info, format)
		},
	}

	cmd.Flags().StringP("output", "o", "", "output format: json or yaml")
	cmd.Flags().Bool("short", false, "print only the version number")

	return cmd
}

func writeBuildInfo(w io.Writer, info BuildInfo, format string) error {
	switch format {
	case "json":
		return json.NewEncoder(w).Encode(info)
	case "yaml":
		b, err := yaml.Marshal(info)
		if err != nil {
			return errors.Wrap(err, "failed to marshal build info")
		}
		_, err = w.Write(b)
		return err
	case "":
		fmt.Fprintf(w, "SureCart licensing SDK %s\n", info.Version)
		if info.GitSHA != "" {
			fmt.Fprintf(w, "  commit: %s\n", info.GitSHA)
		}
		if info.BuildTime != "" {
			fmt.Fprintf(w, "  built:  %s\n", info.BuildTime)
		}
		return nil
	}
	return errors.Errorf("output format %q is not supported, use json or yaml", format)
}
