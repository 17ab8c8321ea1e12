// Command docstore is a CLI binding over the document store engine: open a
// directory, load rules, and run put/get/delete/query/flush/compact
// against it. Marshalling request/response shapes for a shell is a binding
// concern, not part of the engine itself.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chaturanga836/docstore/internal/engine"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "docstore",
	Short: "Embedded document store administration CLI",
}

var putCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Write a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.Put(args[0], []byte(args[1])); err != nil {
			return err
		}
		fmt.Printf("put %s ok\n", args[0])
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		value, err := e.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(string(value))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("delete %s ok\n", args[0])
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <collection> <field> <value>",
	Short: "Run an equality query through the inverted index",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		docs, err := e.Query(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		for _, doc := range docs {
			fmt.Println(doc.Path)
		}
		fmt.Printf("%d document(s)\n", len(docs))
		return nil
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Flush the memtable to a new SST and rotate the WAL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.Flush(); err != nil {
			return err
		}
		fmt.Println("flush ok")
		return nil
	},
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Merge the directory's SSTs into one, dropping dead tombstones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		stats, err := e.Compact()
		if err != nil {
			return err
		}
		fmt.Printf("files %d -> %d, entries %d -> %d, tombstones dropped %d\n",
			stats.FilesBefore, stats.FilesAfter, stats.EntriesBefore, stats.EntriesAfter, stats.TombstonesRemoved)
		return nil
	},
}

var rulesCmd = &cobra.Command{
	Use:   "load-rules <file>",
	Short: "Parse and load a rules DSL file into the engine; the ruleset is not persisted past this command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read rules file: %w", err)
		}
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.LoadRules(string(text)); err != nil {
			return err
		}
		fmt.Println("rules loaded")
		return nil
	},
}

func openEngine() (*engine.Engine, error) {
	return engine.OpenNative(dataDir, engine.DefaultOptions())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "./data", "database directory")
	rootCmd.AddCommand(putCmd, getCmd, deleteCmd, queryCmd, flushCmd, compactCmd, rulesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
