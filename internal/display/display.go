// Package display hands pipeline results to the user.
package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/andresmejia3/facepipe/internal/config"
	"github.com/andresmejia3/facepipe/internal/imageio"
	"github.com/andresmejia3/facepipe/internal/pipeline"
	"github.com/andresmejia3/facepipe/internal/utils"
	"gocv.io/x/gocv"
)

// Viewer consumes one annotated result.
type Viewer interface {
	Show(ctx context.Context, res *pipeline.Result) error
}

// New returns the viewer for mode. Recognitions are printed to out.
func New(mode, saveDir string, out io.Writer) (Viewer, error) {
	switch mode {
	case config.DisplaySystem:
		return NewSystemViewer(out, TempDir())
	case config.DisplayWindow:
		return &WindowViewer{Out: out}, nil
	case config.DisplaySave:
		return &SaveViewer{Dir: saveDir, Out: out}, nil
	case config.DisplayNone:
		return &PrintViewer{Out: out}, nil
	default:
		return nil, fmt.Errorf("unknown display mode %q", mode)
	}
}

// PrintRecognitions writes one row per face found in res.
func PrintRecognitions(w io.Writer, res *pipeline.Result) error {
	fmt.Fprintf(w, "📷 %s: %d face(s)\n", res.Path, len(res.Faces))
	if len(res.Faces) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tVOTES\tTOP\tRIGHT\tBOTTOM\tLEFT")
	fmt.Fprintln(tw, "-----\t-----\t---\t-----\t------\t----")
	for _, f := range res.Faces {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", f.Label, f.Votes, f.Box.Top, f.Box.Right, f.Box.Bottom, f.Box.Left)
	}
	return tw.Flush()
}

// PrintViewer only prints the recognitions.
type PrintViewer struct {
	Out io.Writer
}

func (v *PrintViewer) Show(_ context.Context, res *pipeline.Result) error {
	return PrintRecognitions(v.Out, res)
}

// SaveViewer writes <Dir>/<base>.annotated.png for every result.
type SaveViewer struct {
	Dir string
	Out io.Writer
}

// Target returns where the annotated copy of path is written.
func (v *SaveViewer) Target(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(v.Dir, base+".annotated.png")
}

func (v *SaveViewer) Show(_ context.Context, res *pipeline.Result) error {
	if err := PrintRecognitions(v.Out, res); err != nil {
		return err
	}
	if err := utils.EnsureDirs(v.Dir); err != nil {
		return err
	}
	target := v.Target(res.Path)
	if err := imageio.SavePNG(target, res.Image); err != nil {
		return err
	}
	fmt.Fprintf(v.Out, "💾 Saved %s\n", target)
	return nil
}

// SystemViewer opens the annotated image with the platform image viewer.
// Images are written to Dir, which holds only the current run's files.
type SystemViewer struct {
	Out    io.Writer
	Dir    string
	Opener string

	shown int
}

// TempDir is where SystemViewer writes its images by default.
func TempDir() string {
	return filepath.Join(os.TempDir(), "facepipe")
}

// NewSystemViewer empties dir of images left by an earlier run. The viewer
// may still be reading the current run's images after the process exits,
// so they are left in place until the next run.
func NewSystemViewer(out io.Writer, dir string) (*SystemViewer, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	if err := utils.EnsureDirs(dir); err != nil {
		return nil, err
	}
	return &SystemViewer{Out: out, Dir: dir, Opener: opener()}, nil
}

func opener() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}

func (v *SystemViewer) Show(ctx context.Context, res *pipeline.Result) error {
	if err := PrintRecognitions(v.Out, res); err != nil {
		return err
	}

	v.shown++
	base := strings.TrimSuffix(filepath.Base(res.Path), filepath.Ext(res.Path))
	target := filepath.Join(v.Dir, fmt.Sprintf("%04d-%s.png", v.shown, base))
	if err := imageio.SavePNG(target, res.Image); err != nil {
		return err
	}

	sc := utils.NewSafeCommand(v.Opener, target)
	if err := sc.Run(); err != nil {
		if msg := strings.TrimSpace(sc.Stderr.String()); msg != "" {
			return fmt.Errorf("%s %s: %w: %s", v.Opener, target, err, msg)
		}
		return fmt.Errorf("%s %s: %w", v.Opener, target, err)
	}
	return ctx.Err()
}

// WindowViewer shows the result in an OpenCV window and waits for a key.
type WindowViewer struct {
	Out io.Writer
}

func (v *WindowViewer) Show(ctx context.Context, res *pipeline.Result) error {
	if err := PrintRecognitions(v.Out, res); err != nil {
		return err
	}

	mat, err := gocv.ImageToMatRGB(res.Image)
	if err != nil {
		return fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	window := gocv.NewWindow(filepath.Base(res.Path))
	defer window.Close()

	window.IMShow(mat)
	for ctx.Err() == nil {
		if window.WaitKey(100) >= 0 {
			return nil
		}
	}
	return ctx.Err()
}
