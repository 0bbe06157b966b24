package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	config "github.com/xilidan/transcriber/config/asr"
	"github.com/xilidan/transcriber/pkg/logger"
	"github.com/xilidan/transcriber/services/asr/client"
	"github.com/xilidan/transcriber/services/asr/consts"
	"github.com/xilidan/transcriber/services/asr/entity"
	"github.com/xilidan/transcriber/services/asr/server"
	"github.com/xilidan/transcriber/services/asr/usecase"
)

type rootState struct {
	app *app
}

func newRootCmd() *cobra.Command {
	state := &rootState{}

	cmd := &cobra.Command{
		Use:           "asr",
		Short:         "Transcription service with editable, syncable history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger.SetDefault(log)

			state.app = &app{cfg: cfg, log: log}
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if state.app != nil {
				return state.app.Close()
			}
			return nil
		},
	}

	cmd.AddCommand(newServeCmd(state))
	cmd.AddCommand(newHistoryCmd(state))
	cmd.AddCommand(newExportCmd(state))
	cmd.AddCommand(newSyncCmd(state))
	cmd.AddCommand(newHealthcheckCmd(state))

	return cmd
}

func (s *rootState) usecase(ctx context.Context) (usecase.Usecase, error) {
	return s.app.usecase(ctx)
}

func newServeCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := state.app.log

			uc, err := state.usecase(ctx)
			if err != nil {
				log.Error("failed to build usecase", slog.String("error", err.Error()))
				return err
			}

			return server.New(state.app.cfg, uc, log).Start(ctx)
		},
	}
}

func newHistoryCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "history <file_id>",
		Short: "Print the history item of a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := state.usecase(cmd.Context())
			if err != nil {
				return err
			}

			item, err := uc.GetHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	}
}

func newExportCmd(state *rootState) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export <file_id>",
		Short: "Export a transcript as txt or docx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := state.usecase(cmd.Context())
			if err != nil {
				return err
			}

			var export *entity.Export
			switch format {
			case consts.TextExt:
				export, err = uc.ExportText(cmd.Context(), args[0])
			case consts.DocxExt:
				export, err = uc.ExportDocx(cmd.Context(), args[0])
			default:
				return fmt.Errorf("unknown format %q (want %s or %s)", format, consts.TextExt, consts.DocxExt)
			}
			if err != nil {
				return err
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(export.Content)
				return err
			}

			path := out
			if path == "" {
				path = export.Filename
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, export.Filename)
			}

			if err := os.WriteFile(path, export.Content, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", consts.TextExt, "Export format: txt or docx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file or directory; - writes to stdout")

	return cmd
}

func newSyncCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <items.json>",
		Short: "Reconcile a client history export with the server; - reads stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			dec := json.NewDecoder(r)
			dec.UseNumber()

			var batch []any
			if err := dec.Decode(&batch); err != nil {
				return fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err)
			}

			uc, err := state.usecase(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := uc.Sync(cmd.Context(), batch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newHealthcheckCmd(state *rootState) *cobra.Command {
	var addr string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Query the gRPC health service of a running instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				if state.app.cfg.GRPCHealthPort == 0 {
					return fmt.Errorf("GRPC_HEALTH_PORT is not set and --addr is empty")
				}
				addr = fmt.Sprintf("127.0.0.1:%d", state.app.cfg.GRPCHealthPort)
			}

			c, err := client.New(addr)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			ok, err := c.Serving(ctx, "")
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not serving", addr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "SERVING")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "host:port of the gRPC health service")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "Check timeout")

	return cmd
}
