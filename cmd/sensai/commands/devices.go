package commands

import (
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio devices",
	Long: `List audio input and output devices.

Select devices for interviews with:
  sensai config set <context> session input_device <index>
  sensai config set <context> session output_device <index>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Audio.List == nil {
			return errNoAudio
		}
		devices, err := Audio.List()
		if err != nil {
			return err
		}
		return outputResult(cmd, deviceTable(devices))
	},
}

func init() {
	addOutputFlags(devicesCmd)
	rootCmd.AddCommand(devicesCmd)
}
