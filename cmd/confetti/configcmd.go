package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/storage"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "inspect and edit the persisted configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "print the persisted configuration",
		Args:  cobra.NoArgs,
		RunE:  configShow,
	}
	setCmd := &cobra.Command{
		Use:   "set [path] [value]",
		Short: "set one value, e.g. cfg.count.range-min 60",
		Args:  cobra.ExactArgs(2),
		RunE:  configSet,
	}
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "restore the defaults",
		Args:  cobra.NoArgs,
		RunE:  configReset,
	}
	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "write the configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  configExport,
	}
	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "apply a yaml file on top of the configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  configImport,
	}
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "print the update journal",
		Args:  cobra.NoArgs,
		RunE:  configHistory,
	}

	cmd.AddCommand(showCmd, setCmd, resetCmd, exportCmd, importCmd, historyCmd)
	return cmd
}

// loadTree builds the default tree with the stored configuration applied.
func loadTree(e *env) (*config.Tree, error) {
	tree := config.Default(e.debug)
	stored, ok, err := e.store.Get(storage.ConfigurationKey(storage.SchemaVersion))
	if err != nil {
		return nil, err
	}
	if ok {
		tree.ApplyAll(stored)
	}
	return tree, nil
}

func saveTree(e *env, tree *config.Tree) error {
	if err := e.store.Set(storage.DefaultsKey(storage.SchemaVersion), config.Default(nil).Flatten()); err != nil {
		return err
	}
	return e.store.Set(storage.ConfigurationKey(storage.SchemaVersion), tree.Flatten())
}

func journal(entries ...storage.JournalEntry) error {
	j, err := storage.OpenJournal(filepath.Join(dataDir, journalName))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := j.Append(entry); err != nil {
			j.Close()
			return err
		}
	}
	return j.Close()
}

func configShow(cmd *cobra.Command, args []string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	tree, err := loadTree(e)
	if err != nil {
		return err
	}
	defaults := config.Default(nil).Flatten()
	current := tree.Flatten()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tVALUE\tDEFAULT")
	for _, path := range tree.Paths() {
		mark := ""
		if current[path] != defaults[path] {
			mark = " *"
		}
		fmt.Fprintf(w, "%s\t%v%s\t%v\n", path, current[path], mark, defaults[path])
	}
	w.Flush()

	for _, err := range tree.Validate() {
		fmt.Printf("warning: %v\n", err)
	}
	return nil
}

func configSet(cmd *cobra.Command, args []string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	tree, err := loadTree(e)
	if err != nil {
		return err
	}
	tree.SetLogger(e.logger)
	value, err := tree.Parse(args[0], args[1])
	if err != nil {
		return err
	}
	old, _ := tree.Get(args[0])
	if !tree.Update(args[0], value) {
		if old != value {
			return fmt.Errorf("%s: %v rejected", args[0], value)
		}
		fmt.Printf("%s unchanged\n", args[0])
		return nil
	}
	if err := saveTree(e, tree); err != nil {
		return err
	}
	v, _ := tree.Get(args[0])
	fmt.Printf("%s = %v\n", args[0], v)
	return journal(storage.JournalEntry{Time: time.Now().UTC(), Path: args[0], Value: v})
}

func configReset(cmd *cobra.Command, args []string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := saveTree(e, config.Default(nil)); err != nil {
		return err
	}
	fmt.Println("configuration reset to defaults")
	return nil
}

func configExport(cmd *cobra.Command, args []string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	tree, err := loadTree(e)
	if err != nil {
		return err
	}
	if err := config.SaveFile(args[0], tree.Flatten()); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", args[0])
	return nil
}

func configImport(cmd *cobra.Command, args []string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	snap, err := config.LoadFile(args[0])
	if err != nil {
		return err
	}
	tree, err := loadTree(e)
	if err != nil {
		return err
	}

	tree.SetLogger(e.logger)

	now := time.Now().UTC()
	var entries []storage.JournalEntry
	skipped := 0
	for _, path := range snap.Keys() {
		old, known := tree.Get(path)
		if tree.Update(path, snap[path]) {
			v, _ := tree.Get(path)
			entries = append(entries, storage.JournalEntry{Time: now, Path: path, Value: v})
		} else if !known || old != snap[path] {
			skipped++
		}
	}
	if skipped > 0 {
		fmt.Printf("skipped %d invalid values\n", skipped)
	}
	if err := saveTree(e, tree); err != nil {
		return err
	}
	fmt.Printf("imported %d changed values from %s\n", len(entries), args[0])
	return journal(entries...)
}

func configHistory(cmd *cobra.Command, args []string) error {
	entries, err := storage.ReadJournal(filepath.Join(dataDir, journalName))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no updates recorded")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPATH\tVALUE")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%v\n", entry.Time.Local().Format("2006-01-02 15:04:05"), entry.Path, entry.Value)
	}
	return w.Flush()
}
