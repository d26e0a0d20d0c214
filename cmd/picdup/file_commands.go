package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"picdup/internal/config"
	"picdup/internal/fileops"
)

func newFileCommand(ctx *commandContext) *cobra.Command {
	fileCmd := &cobra.Command{
		Use:         "file",
		Short:       "Operate on individual image files",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	fileCmd.AddCommand(newFileRenameCommand())
	fileCmd.AddCommand(newFileDeleteCommand())
	fileCmd.AddCommand(newFileRotateCommand())

	return fileCmd
}

func newFileRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename a file within its directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			newPath, err := fileops.Rename(path, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", newPath)
			return nil
		},
	}
}

func newFileDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if err := fileops.Delete(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", path)
			return nil
		},
	}
}

func newFileRotateCommand() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "rotate <path>",
		Short: "Rotate an image 90 degrees and overwrite it in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rotation, err := fileops.ParseRotation(direction)
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if err := fileops.Rotate(path, rotation); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rotated %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "cw", "Rotation direction: cw or ccw")
	return cmd
}
