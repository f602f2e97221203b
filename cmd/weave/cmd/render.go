package cmd

import (
	"fmt"
	"os"

	"github.com/go-drift/weave/pkg/engine"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/logging"
	"github.com/go-drift/weave/pkg/surface/raster"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Render a widget tree document to PNG",
		Long: `Render lays out and paints a document once into an offscreen image
and writes it as PNG. Use "-" to read the document from stdin.

Examples:
  weave render app.yaml -o app.png
  weave render --width 320 --height 200 --scale 2 card.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := readDocument(cmd, args[0], format)
			if err != nil {
				return err
			}
			surface, rt, err := a.offscreen()
			if err != nil {
				return err
			}
			defer rt.Destroy()

			if err := rt.Render(desc); err != nil {
				return err
			}
			rt.Pump()

			out, err := homedir.Expand(a.cfg.Render.Output)
			if err != nil {
				return fmt.Errorf("expand output path: %w", err)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := surface.WritePNG(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}

			b := surface.Image().Bounds()
			logging.Named("render").Info("wrote image", zap.String("path", out), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", out, b.Dx(), b.Dy())
			return nil
		},
	}
	addDocumentFlags(cmd, &format)
	cmd.Flags().StringP("output", "o", "", "output PNG path (default out.png)")
	cmd.Flags().Float64("scale", 0, "device pixels per logical unit (default 1)")
	cmd.Flags().String("background", "", "background color, e.g. #ffffff or transparent")
	_ = a.v.BindPFlag("render.output", cmd.Flags().Lookup("output"))
	_ = a.v.BindPFlag("render.scale", cmd.Flags().Lookup("scale"))
	_ = a.v.BindPFlag("render.background", cmd.Flags().Lookup("background"))
	return cmd
}

// offscreen creates a raster surface and a runtime sized from the config.
func (a *app) offscreen() (*raster.Surface, *engine.Runtime, error) {
	bg := graphics.ColorTransparent
	if name := a.cfg.Render.Background; name != "" {
		c, ok := graphics.ParseColor(name)
		if !ok {
			return nil, nil, fmt.Errorf("invalid render.background %q", name)
		}
		bg = c
	}
	surface := raster.New(float64(a.cfg.Runtime.Width), float64(a.cfg.Runtime.Height), raster.Options{
		Scale: a.cfg.Render.Scale,
		Clear: bg,
	})
	rt := engine.Create(surface, engine.Options{Logger: logging.Named("engine")})
	return surface, rt, nil
}
