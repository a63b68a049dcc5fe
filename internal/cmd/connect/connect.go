// Package connect builds the OBD provider selected by the configuration.
package connect

import (
	"context"
	"fmt"

	"elmpid/internal/obd"
	"elmpid/internal/obd/mock"
	"elmpid/internal/obd/pid"
	"elmpid/internal/obd/serial"
	"elmpid/internal/publisher"
	"elmpid/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Provider returns the mock or the serial provider, not yet started.
func Provider() obd.OBDProvider {
	if viper.GetBool("mock") {
		log.Debug("using mock OBD provider")
		return mock.New()
	}
	return serial.New(viper.GetString("port"), viper.GetInt("baud"))
}

// Start builds and starts the configured provider.
func Start(ctx context.Context) (obd.OBDProvider, error) {
	p := Provider()
	if err := p.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start OBD provider: %w", err)
	}
	return p, nil
}

// Mode returns the configured service mode.
func Mode() (byte, error) {
	mode, err := pid.ParseNumber(viper.GetString("mode"))
	if err != nil {
		return 0, fmt.Errorf("mode: %w", err)
	}
	if len(pid.Default().All(mode)) == 0 {
		return 0, fmt.Errorf("mode %02X: %w", mode, pid.ErrNotFound)
	}
	return mode, nil
}

// Publisher returns the Redis publisher when redis-addr is set, nil otherwise.
func Publisher(ctx context.Context) *publisher.Redis {
	addr := viper.GetString("redis-addr")
	if addr == "" {
		return nil
	}
	p := publisher.NewRedis(addr, viper.GetString("redis-key"))
	if err := p.Ping(ctx); err != nil {
		log.Warn("redis not reachable, readings will not be published", zap.String("addr", addr), zap.Error(err))
		p.Close()
		return nil
	}
	log.Info("publishing readings to redis", zap.String("addr", addr), zap.String("key", viper.GetString("redis-key")))
	return p
}
