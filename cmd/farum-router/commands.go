package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/farum-router/internal/adapters/http"
	"github.com/PabloGalante/farum-router/internal/adapters/queue"
	"github.com/PabloGalante/farum-router/internal/domain"
	"github.com/PabloGalante/farum-router/internal/observability"
)

const shutdownTimeout = 10 * time.Second

type classifyOutput struct {
	Directives []string `json:"directives"`
	Attempts   int      `json:"attempts"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return classifyOnce(ctx, a.svc, strings.Join(args, " "), os.Stdout)
}

func classifyOnce(ctx context.Context, svc classifier, utterance string, out io.Writer) error {
	res, err := svc.Classify(ctx, utterance)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	return enc.Encode(classifyOutput{
		Directives: domain.Strings(res.Directives),
		Attempts:   res.Attempts,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := observability.Logger()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(a.svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("farum-router listening", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := observability.Logger()

	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("FARUM_RABBITMQ_URL is required for the worker")
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	pub, err := queue.NewPublisher(cfg.RabbitMQURL, cfg.OutputQueue)
	if err != nil {
		return err
	}
	defer pub.Close()

	cons, err := queue.NewConsumer(cfg.RabbitMQURL, cfg.InputQueue)
	if err != nil {
		return err
	}
	defer cons.Close()

	log.Info("connected to RabbitMQ",
		"input_queue", cfg.InputQueue,
		"output_queue", cfg.OutputQueue)

	w := queue.NewWorker(a.svc, pub)
	if err := cons.Start(ctx, w.Handle); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer: %w", err)
	}

	log.Info("worker stopped")
	return nil
}
