package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/m0ric/replaykit/internal/logger"
	"github.com/m0ric/replaykit/internal/record"
	"github.com/m0ric/replaykit/internal/session"
)

// NewRecordCommand creates the record subcommand
func NewRecordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a session from a capture source",
		Long: `Feed a capture source through the recorder and store the result
in the session library.

The source is a JSONL stream of raw input samples, one JSON object per
line, read from --from-jsonl or stdin. Mouse positions are absolute and
get converted to relative deltas; the reserved control hotkeys never
appear in the recording.

Examples:
  replaykit record --from-jsonl capture.jsonl --name gather_loop
  some-capture-tool | replaykit record --name gather_loop`,
		Args:         cobra.NoArgs,
		RunE:         runRecord,
		SilenceUsage: true,
	}

	cmd.Flags().String("from-jsonl", "", "Capture script to record from (defaults to stdin)")
	cmd.Flags().String("name", "", "Session name (defaults to a timestamped name)")

	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	var source *record.JSONLSource
	if path, _ := cmd.Flags().GetString("from-jsonl"); path != "" {
		src, f, err := record.OpenJSONLFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		source = src
	} else {
		source = record.NewJSONLSource(cmd.InOrStdin())
	}

	recorder := record.NewRecorder()
	recorder.Start()

	log.LogInfo("Recording...")
	if err := source.Run(cmd.Context(), recorder.Handle); err != nil {
		recorder.Stop()
		return err
	}

	rec := recorder.Stop()
	if rec.EventCount() == 0 {
		return fmt.Errorf("nothing recorded")
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = defaultSessionName(time.Now())
	}

	library := session.NewLibrary(cfg.LibraryDir)
	path, err := library.Store(name, rec)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	log.LogSuccess(fmt.Sprintf("Recorded %s: %d mouse and %d keyboard events over %s",
		path, len(rec.MouseEvents), len(rec.KeyboardEvents),
		logger.FormatDuration(rec.Duration())))
	return nil
}

// defaultSessionName mirrors the default file naming of stored recordings,
// without the extension.
func defaultSessionName(t time.Time) string {
	name := session.DefaultFilename(t)
	return name[:len(name)-len(".json")]
}
