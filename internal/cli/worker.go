/*
Package cli implements the recommender commands.

The worker command is the engine's protocol boundary: it reads one request
document from stdin, runs the orchestrator, writes one response document to
stdout and exits 0. The train/recommend commands are the caller side, used
by operators and integration scripts; the storefront invokes the worker the
same way they do.
*/
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxestream/recommender/internal/config"
	"github.com/luxestream/recommender/internal/engine"
	"github.com/luxestream/recommender/internal/protocol"
	"github.com/luxestream/recommender/internal/store"
)

// NewWorkerCmd creates the 'worker' command.
//
// Exit code 0 means the process ran to completion, including requests that
// resolve to an in-band error response. A non-zero exit only signals an
// infrastructure failure (stdin unreadable, stdout unwritable).
func NewWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run one train/predict request (stdio transport)",
		Long: `Read a single request document from stdin, execute it and write a
single response document to stdout.

Request:  {"action": "train"|"predict", "movies": [...], "preferences": {...}}
Response: {"status": "success"|"error", "recommendations"?: [...], "message"?: "..."}

Each invocation is isolated; trained state crosses calls only through the
model store.`,
		Example: `  echo '{"action":"predict","movies":[...],"preferences":{...}}' | recommender worker`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(os.Stdin, os.Stdout)
		},
	}

	return cmd
}

// runWorker executes one request from in and writes the response to out.
func runWorker(in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	req, err := protocol.ParseRequest(data)
	if err != nil {
		// Malformed input is an application error, not an infrastructure one.
		return writeResponse(out, protocol.Errorf("%v", err))
	}

	cfg, err := config.LoadOrCreate()
	if err != nil {
		log.Printf("Warning: using default config: %v", err)
		cfg = config.NewConfig()
	}

	resp := execute(cfg, req)
	return writeResponse(out, resp)
}

// execute wires the store and orchestrator for one request.
func execute(cfg *config.Config, req *protocol.Request) protocol.Response {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return protocol.Errorf("failed to resolve model store path: %v", err)
	}

	st := store.NewStore(dbPath)
	if err := st.Init(); err != nil {
		// A disabled store still serves predict via fallback scoring; train
		// will surface its own persistence error.
		log.Printf("Warning: model store unavailable: %v", err)
	}
	defer st.Close()

	orch := engine.New(st, engine.Options{
		MixWeight: cfg.Settings.MixWeight,
		TopK:      cfg.Settings.TopK,
	})

	return orch.Handle(req)
}

// writeResponse writes the single response document to out.
func writeResponse(out io.Writer, resp protocol.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	data = append(data, '\n')

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
