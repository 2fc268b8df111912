package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"imagestudio/internal/domain"
	"imagestudio/internal/providers/image"
	"imagestudio/internal/storage"
	"imagestudio/internal/studio"
	"imagestudio/internal/view"
)

var (
	promptFlag string
	ratioFlag  string
	outputFile string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one image",
	Long: `Generate one image from a prompt and preview the result.

The prompt defaults to DEFAULT_PROMPT and the aspect ratio to
DEFAULT_ASPECT_RATIO. With -o the image is written to disk; the file
extension is added from the returned MIME type when missing.

Example:
  imagegen generate -p "a woman in a red bikini on a white sand beach" -a 3:4 -o beach`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "text prompt")
	generateCmd.Flags().StringVarP(&ratioFlag, "aspect-ratio", "a", "", "aspect ratio: "+ratioList())
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the image to this file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	prompt := cfg.DefaultPrompt
	if cmd.Flags().Changed("prompt") {
		prompt = promptFlag
	}
	ratio := cfg.DefaultAspect
	if ratioFlag != "" {
		if ratio, err = domain.ParseAspectRatio(ratioFlag); err != nil {
			return fmt.Errorf("%w (supported: %s)", err, ratioList())
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := image.New(ctx, image.Options{
		Provider:       cfg.ImageProvider,
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		OutputMIME:     cfg.ImageOutputMIME,
		SyntheticDelay: cfg.SyntheticDelay,
		Logger:         &logger,
	})
	if err != nil {
		return err
	}
	orch, err := studio.New(image.NewSource(gen), studio.Options{
		Logger:      &logger,
		Prompt:      prompt,
		AspectRatio: ratio,
		Timeout:     cfg.GenerateTimeout,
	})
	if err != nil {
		return err
	}

	labels := view.CopyFor(cfg.DefaultLocale)
	st := styles()
	out := cmd.OutOrStdout()

	// Preview the loading frame while the call is in flight.
	var previewDone chan struct{}
	unsubscribe := func() {}
	if !outputJSON {
		var updates <-chan domain.Snapshot
		updates, unsubscribe = orch.Subscribe()
		previewDone = make(chan struct{})
		go func() {
			defer close(previewDone)
			for snap := range updates {
				if snap.State.IsLoading() {
					fmt.Fprintln(out, view.RenderTerminal(view.Derive(snap, labels), st, width))
				}
			}
		}()
	}

	state := orch.Submit(ctx)
	unsubscribe()
	if previewDone != nil {
		<-previewDone
	}
	snap := orch.Snapshot()

	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, view.RenderTerminal(view.Derive(snap, labels), st, width))
	}

	if msg, failed := state.Err(); failed {
		return fmt.Errorf("%s", msg)
	}
	if outputFile == "" {
		return nil
	}
	ref, _ := state.Image()
	path, asset, err := saveImage(ctx, outputFile, ref)
	if err != nil {
		return err
	}
	if !outputJSON {
		fmt.Fprintln(out, st.Help.Render(savedLine(path, asset)))
	}
	return nil
}

// saveImage writes the image behind ref to target and returns the final path
// with the decoded asset.
func saveImage(ctx context.Context, target string, ref domain.ImageRef) (string, *image.Asset, error) {
	asset, err := image.DecodeReference(ref)
	if err != nil {
		return "", nil, err
	}
	store, err := storage.NewFileStore(filepath.Dir(target))
	if err != nil {
		return "", nil, err
	}
	path, err := store.Save(ctx, filepath.Base(target), asset.Data, image.ExtensionFor(asset.MIMEType))
	if err != nil {
		return "", nil, err
	}
	return path, asset, nil
}

func savedLine(path string, asset *image.Asset) string {
	if asset.Width > 0 && asset.Height > 0 {
		return fmt.Sprintf("saved %s (%dx%d %s)", path, asset.Width, asset.Height, asset.MIMEType)
	}
	return fmt.Sprintf("saved %s (%s)", path, asset.MIMEType)
}

func ratioList() string {
	ratios := domain.AspectRatios()
	names := make([]string, len(ratios))
	for i, r := range ratios {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
