package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	handlertypes "github.com/surecart/licensing-sdk/pkg/handlers/types"
	"github.com/surecart/licensing-sdk/pkg/updater"
)

func CheckUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check-update",
		Short:        "Check whether a newer release is available",
		Long:         ``,
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			output := v.GetString("output")
			if output != "json" && output != "" {
				return errors.Errorf("output format %s not supported (allowed formats are: json)", output)
			}

			client, err := loadClient()
			if err != nil {
				return err
			}

			hc := updater.Context{}
			if v.GetBool("force") {
				hc.Page = updater.ForceRefreshPage
			}

			installed := client.Project().Version
			info := client.Updater().GetVersionInfo(cmd.Context(), hc)

			response := handlertypes.UpdatesResponse{
				InstalledVersion: installed,
				Info:             info,
			}
			if info != nil {
				response.NewVersion = info.NewVersion
				response.UpdateAvailable = updater.UpdateAvailable(installed, info)
			}

			if output == "json" {
				outputJSON, err := json.Marshal(response)
				if err != nil {
					return errors.Wrap(err, "failed to marshal update info")
				}
				fmt.Println(string(outputJSON))
				return nil
			}

			switch {
			case info == nil:
				fmt.Println("No update information is available.")
			case response.UpdateAvailable:
				fmt.Printf("Version %s is available (installed %s).\n", response.NewVersion, installed)
			default:
				fmt.Printf("Up to date (%s).\n", installed)
			}
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "bypass the cached version info")
	cmd.Flags().StringP("output", "o", "", "output format (currently supported: json)")

	return cmd
}
