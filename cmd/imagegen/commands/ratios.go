package commands

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"imagestudio/internal/domain"
	"imagestudio/internal/view"
)

type ratioInfo struct {
	Ratio   domain.AspectRatio `json:"ratio"`
	Shape   string             `json:"shape"`
	Default bool               `json:"default"`
}

var ratiosCmd = &cobra.Command{
	Use:   "ratios",
	Short: "List supported aspect ratios",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Listing needs no provider, so a missing API key is not an error here.
		def := domain.DefaultAspectRatio
		if cfg, err := loadConfig(); err == nil {
			def = cfg.DefaultAspect
		}
		infos := make([]ratioInfo, 0, len(domain.AspectRatios()))
		for _, r := range domain.AspectRatios() {
			infos = append(infos, ratioInfo{Ratio: r, Shape: view.ShapeFor(r).Name, Default: r == def})
		}

		out := cmd.OutOrStdout()
		if outputJSON {
			return json.NewEncoder(out).Encode(infos)
		}
		st := styles()
		rows := make([]string, 0, len(infos))
		for _, info := range infos {
			name := st.Option.Render(info.Ratio.String())
			if info.Default {
				name = st.Selected.Render(info.Ratio.String())
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, name, " ", st.Help.Render(info.Shape)))
		}
		fmt.Fprintln(out, lipgloss.JoinVertical(lipgloss.Left, rows...))
		return nil
	},
}
