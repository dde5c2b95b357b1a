package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vibelab/vibrascope/pkg/capture"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Browse and manage stored capture records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		st := session.StoreStats()
		if st.Count == 0 {
			fmt.Println("store is empty")
			return nil
		}

		fmt.Printf("%-5s %-19s %10s %10s %10s %10s\n",
			"idx", "timestamp", "fs Hz", "peak X", "peak Y", "peak Z")
		for i := 0; i < st.Count; i++ {
			rec, _, err := session.LoadRecord(i)
			if err != nil {
				return err
			}
			fmt.Printf("%-5d %-19s %10.2f %10.2f %10.2f %10.2f\n",
				i, rec.StartTime.Format("2006-01-02 15:04:05"), rec.SampleRate,
				rec.PeakFreqs[capture.AxisX], rec.PeakFreqs[capture.AxisY], rec.PeakFreqs[capture.AxisZ])
		}
		return nil
	},
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Show one record's metadata and statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logical, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("index must be an integer: %w", err)
		}

		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		rec, grid, err := session.LoadRecord(logical)
		if err != nil {
			return err
		}

		fmt.Printf("record %d\n", logical)
		fmt.Printf("  start time:  %s\n", rec.StartTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("  sample rate: %.2f Hz\n", rec.SampleRate)
		fmt.Printf("  samples:     %d per axis, %d spectrum bins\n", rec.SampleCount(), rec.BinCount())
		fmt.Printf("  spectrogram: %d segments, range [%.2f, %.2f]\n", grid.Segments(), grid.Min, grid.Max)
		fmt.Printf("\n  %-5s %10s %10s %10s %10s %10s\n", "axis", "peak Hz", "min", "max", "mean", "sd")
		for axis := 0; axis < capture.Axes; axis++ {
			st := rec.Stats[axis]
			fmt.Printf("  %-5s %10.2f %10.5f %10.5f %10.5f %10.5f\n",
				capture.AxisNames[axis], rec.PeakFreqs[axis], st.Min, st.Max, st.Mean, st.SD)
		}
		return nil
	},
}

var recordsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored records",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		if err := session.DeleteAll(); err != nil {
			return err
		}
		fmt.Println("store wiped")
		return nil
	},
}

var recordsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store occupancy",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		st := session.StoreStats()
		fmt.Printf("records:  %d / %d\n", st.Count, st.Capacity)
		fmt.Printf("used:     %d bytes\n", st.UsedBytes)
		fmt.Printf("total:    %d bytes\n", st.TotalBytes)
		return nil
	},
}

func init() {
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)
	recordsCmd.AddCommand(recordsClearCmd)
	recordsCmd.AddCommand(recordsStatsCmd)
	rootCmd.AddCommand(recordsCmd)
}
