package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eringen/filepress/scaffold"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

func newNewCmd() *cobra.Command {
	var author string
	cmd := &cobra.Command{
		Use:   "new <dir>",
		Short: "Create a new filepress instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, args[0], author, time.Now())
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "default author for posts")
	return cmd
}

func runNew(cmd *cobra.Command, dir, author string, now time.Time) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	data := scaffold.NewData(filepath.Base(dir), now)
	data.Author = author

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Creating new filepress instance: %s\n\n", dir)
	created, err := scaffold.Write(osfs.New(dir), data)
	if err != nil {
		return err
	}
	for _, name := range created {
		fmt.Fprintf(out, "  created %s\n", filepath.Join(dir, name))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  filepress serve --instance %s\n", dir)
	return nil
}
