package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/surecart/licensing-sdk/pkg/config"
	"github.com/surecart/licensing-sdk/pkg/k8sutil"
	"github.com/surecart/licensing-sdk/pkg/licensing"
	"github.com/surecart/licensing-sdk/pkg/logger"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "licensing",
		Short: "licensing activates SureCart licenses and checks for updates",
		Long:  ``,
		Args:  cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			viper.BindPFlags(cmd.Flags())
			return logger.SetLevel(viper.GetString("log-level"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("log-level", "info", "set the log level")
	cmd.PersistentFlags().String("config-file", "", "path to the licensing config file")
	k8sutil.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(APICmd())
	cmd.AddCommand(ActivateCmd())
	cmd.AddCommand(DeactivateCmd())
	cmd.AddCommand(StatusCmd())
	cmd.AddCommand(CheckUpdateCmd())
	cmd.AddCommand(MockServerCmd())
	cmd.AddCommand(VersionCmd())

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return cmd
}

func initConfig() {
	viper.SetEnvPrefix("SURECART_LICENSING")
	viper.AutomaticEnv()
}

func loadConfig() (*config.LicensingConfig, error) {
	configFilePath := viper.GetString("config-file")
	if configFilePath == "" {
		return nil, errors.New("config file must be specified")
	}

	lc, err := config.LoadLicensingConfig(configFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return lc, nil
}

func loadClient() (*licensing.Client, error) {
	lc, err := loadConfig()
	if err != nil {
		return nil, err
	}

	client, err := licensing.NewFromConfig(lc, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create licensing client")
	}
	return client, nil
}
