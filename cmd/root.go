package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docsearch/src/log"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docsearch",
	Short: "Upload documents and ask questions about them",
	Long: `docsearch indexes uploaded PDF, text and markdown files into a vector store
and answers natural-language questions from them, pulling in Wikipedia
articles when the indexed content cannot answer.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml if present)")
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error(err, "Failed to load .env file")
	}

	settingDefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Error(err, "Failed to read config file")
		}
	} else {
		log.Info("Using config file", "path", viper.ConfigFileUsed())
	}

	if err := log.Setup(viper.GetString("log.level"), viper.GetBool("log.development")); err != nil {
		log.Error(err, "Invalid log configuration, keeping defaults")
	}
}
