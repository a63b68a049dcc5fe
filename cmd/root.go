package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"elmpid/internal/cmd/root"
	"elmpid/internal/obd/serial"
	"elmpid/pkg/log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "elmpid",
	Short: "Read and decode OBD-II PIDs through an ELM327 adapter",
	Run:   root.Run,
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().String("config", "", "Config file (default ./elmpid.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().Bool("mock", false, "Use mock OBD provider")
	rootCmd.PersistentFlags().String("port", "", "Serial port of the adapter (auto-detected when empty)")
	rootCmd.PersistentFlags().Int("baud", serial.DefaultBaud, "Baud rate for serial connection")
	rootCmd.PersistentFlags().String("mode", "01", "Service mode to read (hex)")
	rootCmd.Flags().Bool("no-tui", false, "Print a single summary instead of running the TUI")
	rootCmd.Flags().Duration("interval", 2*time.Second, "Refresh interval of the TUI")
	rootCmd.Flags().String("redis-addr", "", "Publish readings to this Redis server")
	rootCmd.Flags().String("redis-key", "obd", "Redis hash receiving the readings")

	for _, name := range []string{"debug", "mock", "port", "baud", "mode"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	for _, name := range []string{"no-tui", "interval", "redis-addr", "redis-key"} {
		viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}

	// Set default values
	viper.SetDefault("debug", false)
	viper.SetDefault("no-tui", false)
	viper.SetDefault("mock", false)
	viper.SetDefault("baud", serial.DefaultBaud)
	viper.SetDefault("mode", "01")
	viper.SetDefault("interval", 2*time.Second)
	viper.SetDefault("redis-key", "obd")

	rootCmd.AddCommand(decodeCmd, listCmd, scanCmd)
}

func initConfig() {
	// A missing .env is fine
	_ = godotenv.Load()

	viper.SetEnvPrefix("ELMPID")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if file, _ := rootCmd.PersistentFlags().GetString("config"); file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName("elmpid")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
		}
	}
}

func initLogger() {
	if err := log.InitLogger(viper.GetBool("debug")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
	}
}

func Execute() {
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
