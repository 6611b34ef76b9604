package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pmpo/pmpo"
	"github.com/YuminosukeSato/pmpo/server"
)

func (a *app) serveCmd() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve a saved model over HTTP",
		Example: `  pmpo serve --model cns.json --addr :8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := pmpo.LoadModel(modelPath)
			if err != nil {
				return err
			}
			sc := a.cfg.Server
			srv, err := server.New(m, server.Config{
				Addr:            sc.Addr,
				ReadTimeout:     sc.ReadTimeout,
				WriteTimeout:    sc.WriteTimeout,
				ShutdownTimeout: sc.ShutdownTimeout,
				ScoreRate:       sc.ScoreRate,
				ScoreBurst:      sc.ScoreBurst,
			})
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Saved model (.json or gob)")
	cmd.Flags().String("addr", "", "Listen address (overrides config)")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
