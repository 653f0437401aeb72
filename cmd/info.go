package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ovh/pvfs/fs"
)

// Display fs-wide information using the configured backend.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display fs-wide information",
	Long: "Initialize the configured backend and display usage counters\n" +
		"of the filesystem rooted at inode 1.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fsys, s, err := newFilesystem()
		if err != nil {
			return err
		}
		defer s.Close()

		c := context.Background()
		if err = fsys.Init(c); err != nil {
			return err
		}

		stats, err := fsys.StatFs(c, 0, 0, fs.RootInode)
		if err != nil {
			return err
		}

		p := fmt.Printf

		color.White("Filesystem at %s:\n\n", rootPath)
		p("* Inodes : %d\n", stats.Files)
		p("* Block size : %d\n", stats.Bsize)
		p("* Blocks : %d\n", stats.Blocks)
		p("* Blocks free : %d\n", stats.Bfree)
		p("* Max name length : %d\n", stats.NameLen)

		return nil
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)
}
