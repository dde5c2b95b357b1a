package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const clockLayout = "2006-01-02 15:04:05"

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Read or set the wall clock",
}

var clockGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current wall-clock time",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		fmt.Println(session.CurrentTime().Format(clockLayout))
		return nil
	},
}

var clockSetCmd = &cobra.Command{
	Use:   "set <yyyy-MM-dd HH:mm:ss>",
	Short: "Set the wall-clock time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := time.ParseInLocation(clockLayout, args[0], time.Local)
		if err != nil {
			return fmt.Errorf("parsing time %q: %w", args[0], err)
		}

		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		if err := session.SetTime(t); err != nil {
			return err
		}
		fmt.Printf("clock set to %s\n", t.Format(clockLayout))
		return nil
	},
}

func init() {
	clockCmd.AddCommand(clockGetCmd)
	clockCmd.AddCommand(clockSetCmd)
	rootCmd.AddCommand(clockCmd)
}
