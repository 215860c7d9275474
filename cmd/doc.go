package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docCmdGroup = &cobra.Command{
	Use:   "doc <command>",
	Short: "Generate the documentation of the commands",
	Long:  "Generate the manual pages or the markdown reference of the cozy-pokedex commands and flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Usage()
	},
}

var manDocCmd = &cobra.Command{
	Use:   "man <directory>",
	Short: "Write one manual page per command in a directory",
	Example: `$ mkdir -p ~/share/man/man1
$ cozy-pokedex doc man ~/share/man/man1
$ MANPATH=~/share/man man cozy-pokedex-serve`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		header := &doc.GenManHeader{
			Title:   "COZY-POKEDEX",
			Section: "1",
			Source:  "cozy-pokedex",
			Manual:  "Pokedex manual",
		}
		return doc.GenManTree(RootCmd, header, args[0])
	},
}

var markdownDocCmd = &cobra.Command{
	Use:     "markdown <directory>",
	Short:   "Write the markdown reference of the commands, in docs/cli by default",
	Example: `$ cozy-pokedex doc markdown docs/cli`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		directory := "./docs/cli"
		if len(args) == 1 {
			directory = args[0]
		}
		RootCmd.DisableAutoGenTag = true
		return doc.GenMarkdownTree(RootCmd, directory)
	},
}
