// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"lumiband/internal/audio"
	"lumiband/internal/tui"

	"github.com/spf13/cobra"
)

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()

			if !opts.tui {
				return audio.ListDevices(cmd.OutOrStdout())
			}

			d, ok, err := tui.PickDevice(audio.HostDevices)
			if err != nil || !ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected [%d] %s\nRun with --device %d or set audio.input_device: %d\n",
				d.ID, d.Name, d.ID, d.ID)
			return nil
		},
	}
}
