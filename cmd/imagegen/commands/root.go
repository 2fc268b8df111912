package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"imagestudio/internal/infra"
	"imagestudio/internal/view"
)

var (
	// Global flags
	provider   string
	apiKey     string
	model      string
	locale     string
	outputJSON bool
	verbose    bool
	width      int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "imagegen",
	Short: "Image studio CLI",
	Long: `imagegen - generate images from a text prompt.

Providers:
  - imagen     Google Imagen (GEMINI_API_KEY)
  - gemini     Gemini native image output (GEMINI_API_KEY)
  - synthetic  deterministic placeholder, no key needed

Examples:
  # Generate a landscape image and save it
  imagegen generate -p "a lighthouse at dusk" -a 16:9 -o lighthouse.jpg

  # Try the flow offline
  imagegen --provider synthetic generate -p "dunes"

  # Pipe the final state to another command
  imagegen generate -p "a red kite" --json | jq '.state.phase'
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "image provider: imagen, gemini or synthetic (env IMAGE_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (env GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "provider model override (env GEMINI_MODEL)")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "", "UI language for labels (env DEFAULT_LOCALE)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output the final snapshot as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log provider calls to stderr")
	rootCmd.PersistentFlags().IntVar(&width, "width", 72, "terminal preview width")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(ratiosCmd)
}

// loadConfig reads the environment with flag values layered on top.
func loadConfig() (*infra.Config, error) {
	overrides := map[string]string{
		"IMAGE_PROVIDER": provider,
		"GEMINI_API_KEY": apiKey,
		"GEMINI_MODEL":   model,
		"DEFAULT_LOCALE": locale,
	}
	return infra.LoadConfigFrom(func(key string) (string, bool) {
		if v := overrides[key]; v != "" {
			return v, true
		}
		return os.LookupEnv(key)
	})
}

// newLogger logs to stderr so stdout stays clean for the preview or JSON.
func newLogger() infra.Logger {
	if !verbose {
		return infra.NewLoggerTo(os.Stderr, "production").Level(zerolog.Disabled)
	}
	return infra.NewLoggerTo(os.Stderr, "development")
}

func styles() view.Styles {
	return view.NewStyles(view.DefaultTheme)
}
