package root

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"elmpid/internal/cmd/connect"
	"elmpid/internal/displayer"
	"elmpid/internal/obd"
	"elmpid/internal/obd/pid"
	"elmpid/internal/publisher"
	"elmpid/pkg/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func Run(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mode, err := connect.Mode()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	provider, err := connect.Start(ctx)
	if err != nil {
		log.Fatal("failed to start OBD provider", zap.Error(err))
	}

	pub := connect.Publisher(ctx)
	if pub != nil {
		defer pub.Close()
	}

	if viper.GetBool("no-tui") {
		defer provider.Stop()
		if err := printSummary(ctx, cmd.OutOrStdout(), provider, pid.Default(), mode, pub); err != nil {
			log.Error("failed to read vehicle", zap.Error(err))
		}
		return
	}

	opts := []displayer.Option{
		displayer.WithMode(mode),
		displayer.WithInterval(viper.GetDuration("interval")),
	}
	if pub != nil {
		opts = append(opts, displayer.WithSink(pub))
	}
	d := displayer.New(provider, pid.Default(), opts...)
	go func() {
		<-ctx.Done()
		d.Shutdown()
	}()

	if err := d.Run(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
	}
}

// printSummary reads the adapter status and every supported PID once, then
// the stored DTCs.
func printSummary(ctx context.Context, w io.Writer, provider obd.OBDProvider, reg *pid.Registry, mode byte, pub *publisher.Redis) error {
	supported, err := obd.Discover(ctx, provider, reg, mode)
	if err != nil {
		return err
	}

	readings, errs := obd.ReadAll(ctx, provider, reg, mode, supported)
	for _, err := range errs {
		log.Debug("read failed", zap.Error(err))
	}

	if status := obd.AdapterStatus(ctx, provider); status != "" {
		fmt.Fprintf(w, "Adapter: %s\n", status)
	}
	fmt.Fprintf(w, "Readings (mode %02X, %d supported PIDs):\n", mode, len(supported))
	for _, r := range readings {
		fmt.Fprintf(w, "- %s\n", r)
	}

	errorCodes, err := provider.GetErrors()
	if err != nil {
		return fmt.Errorf("failed to get error codes: %w", err)
	}

	fmt.Fprintln(w, "Current DTC Error Codes:")
	if len(errorCodes) == 0 {
		fmt.Fprintln(w, "No error codes.")
	} else {
		for _, code := range errorCodes {
			fmt.Fprintf(w, "- %s: %s\n", code.Code, code.Description)
		}
	}

	if pub != nil {
		if err := pub.Publish(ctx, readings); err != nil {
			return err
		}
		if err := pub.PublishDTCs(ctx, errorCodes); err != nil {
			return err
		}
	}
	return nil
}
