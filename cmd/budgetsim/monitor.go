package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"custombudget/internal/amqp"
	"custombudget/internal/cli"
	"custombudget/internal/log"
)

func newMonitorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Print line item events from AMQP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.monitor(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) monitor(parent context.Context, out io.Writer) error {
	if a.cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is not set")
	}

	client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}

	var closeOnce sync.Once
	closeClient := func() {
		closeOnce.Do(func() {
			if err := client.Close(); err != nil {
				a.logger.Warn("AMQP close failed", log.FieldError, err)
			}
		})
	}
	defer closeClient()

	parent, cancel := context.WithCancel(parent)
	defer cancel()
	ctx, done := cli.GracefulShutdown(parent, a.logger, a.cfg.ShutdownTimeout, closeClient)
	a.logger.Info("Monitoring line item events", "queue", a.cfg.AMQPQueue)

	err = client.ConsumeLineItemEvents(ctx, func(msg *amqp.LineItemEventMessage) error {
		_, err := fmt.Fprintf(out, "%s %-10s city=%s dept=%s line=%s kind=%s buildings=%d total=%d\n",
			msg.Timestamp.Format("2006-01-02T15:04:05"), msg.Type, msg.CityID,
			log.Hex(msg.DepartmentID), log.Hex(msg.LineID), msg.Kind, msg.BuildingCount, msg.Total)
		return err
	})
	cancel()
	cli.WaitForShutdown(ctx, done)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
