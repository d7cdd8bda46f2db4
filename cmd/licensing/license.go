package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/surecart/licensing-sdk/pkg/apierror"
	"github.com/surecart/licensing-sdk/pkg/license"
)

func ActivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "activate [license-key]",
		Short:        "Activate a license key for this site",
		Long:         ``,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := loadClient()
			if err != nil {
				return err
			}

			activation, err := client.License().Activate(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}

			fmt.Printf("This site was successfully activated (%s).\n", activation.ID)
			return nil
		},
	}

	return cmd
}

func DeactivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "deactivate [activation-id]",
		Short:        "Deactivate this site",
		Long:         `Deactivate the stored activation, or the given activation id`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := loadClient()
			if err != nil {
				return err
			}

			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			if err := client.License().Deactivate(cmd.Context(), id); err != nil {
				return userError(err)
			}

			fmt.Println("This site has been deactivated.")
			return nil
		},
	}

	return cmd
}

func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Show the license status of this site",
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

			status, err := client.Status(cmd.Context())
			if err != nil {
				return userError(err)
			}

			if output == "json" {
				outputJSON, err := json.Marshal(status)
				if err != nil {
					return errors.Wrap(err, "failed to marshal status")
				}
				fmt.Println(string(outputJSON))
				return nil
			}

			fmt.Printf("License key:   %s\n", displayKey(status.LicenseKey))
			fmt.Printf("Activation id: %s\n", status.ActivationID)
			fmt.Printf("Valid:         %t\n", status.IsValid)
			fmt.Printf("Active:        %t\n", status.IsActive)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "output format (currently supported: json)")

	return cmd
}

// userError prefers the human readable message of licensing errors.
func userError(err error) error {
	if apiErr, ok := apierror.As(err); ok {
		return errors.New(apiErr.Message)
	}
	return err
}

func displayKey(key string) string {
	if key == "" {
		return "(none)"
	}
	return license.MaskKey(key)
}
