package main

import (
	"fmt"
	"text/tabwriter"

	"pitch-sieve/internal/video"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe [video]",
	Short: "Print what the container reports about a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := video.Open(args[0])
		if err != nil {
			return err
		}
		defer src.Close()

		meta := src.Metadata()
		if meta.FPSFallback {
			appLog.Warning("probe", "source reports no frame rate, assuming default", map[string]interface{}{
				"fps": meta.FPS,
			})
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		printMetadata(w, args[0], meta)
		return w.Flush()
	},
}

func printMetadata(w *tabwriter.Writer, locator string, meta video.Metadata) {
	fmt.Fprintf(w, "source\t%s\n", locator)
	fmt.Fprintf(w, "fps\t%.3f\n", meta.FPS)
	fmt.Fprintf(w, "frames\t%d\n", meta.FrameCount)
	fmt.Fprintf(w, "resolution\t%dx%d\n", meta.Width, meta.Height)
	fmt.Fprintf(w, "duration\t%.2fs\n", meta.DurationSec)
	if meta.FPSFallback {
		fmt.Fprintf(w, "note\tfps missing, default %.1f used\n", video.DefaultFPS)
	}
}
