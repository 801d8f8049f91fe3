package main

import (
	"fmt"
	"log"
	"runtime"

	"github.com/esimov/seamcarve"
	"github.com/esimov/seamcarve/imop"
	"github.com/esimov/seamcarve/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const helpBanner = `
┌─┐┌─┐┌─┐┌┬┐┌─┐┌─┐┬─┐┬  ┬┌─┐
└─┐├┤ ├─┤│││  ├─┤├┬┘└┐┌┘├┤
└─┘└─┘┴ ┴┴ ┴└─┘┴ ┴┴└─ └┘ └─┘

Content aware image width reduction.
    Version: %s
`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

type options struct {
	source      string
	destination string
	retain      float64
	quality     int
	debug       bool
	maskColor   string
	maskOp      string
	maskBlend   string
	workers     int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "seamcarve",
		Short:         "Shrink images horizontally by removing their least important seams",
		Long:          fmt.Sprintf(helpBanner, Version),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.source, "in", "i", pipeName, "Source image, directory or URL")
	flags.StringVarP(&opts.destination, "out", "o", pipeName, "Destination image or directory")
	flags.Float64VarP(&opts.retain, "retain", "r", seamcarve.DefaultRetainRatio, "Fraction of the image width to keep, in (0, 1]")
	flags.IntVarP(&opts.quality, "quality", "q", 100, "JPEG output quality")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Save a mask of the removed seams next to the output")
	flags.StringVar(&opts.maskColor, "color", "#ff0000", "Seam color used by the debug mask")
	flags.StringVar(&opts.maskOp, "mask-op", imop.SrcOver, "Composition operation used to draw the seams over the image")
	flags.StringVar(&opts.maskBlend, "mask-blend", "", "Blend mode used to mix the seams with the image (darken, lighten, multiply, screen, overlay)")
	flags.IntVar(&opts.workers, "conc", runtime.NumCPU(), "Number of files to process concurrently")

	return cmd
}

func run(opts *options) error {
	if opts.retain <= 0 || opts.retain > 1 {
		return errors.Errorf("the retain ratio should be in the (0, 1] range, got %v", opts.retain)
	}
	maskColor, err := utils.HexToRGBA(opts.maskColor)
	if err != nil {
		return err
	}
	if err := imop.InitOp().Set(opts.maskOp); err != nil {
		return err
	}
	if opts.maskBlend != "" {
		if err := imop.NewBlend().Set(opts.maskBlend); err != nil {
			return err
		}
	}

	proc := &seamcarve.Processor{
		RetainRatio: opts.retain,
		Quality:     opts.quality,
		Debug:       opts.debug,
		MaskColor:   maskColor,
		MaskOp:      opts.maskOp,
		MaskBlend:   opts.maskBlend,
	}
	op := &seamcarve.Ops{
		Src:      opts.source,
		Dst:      opts.destination,
		PipeName: pipeName,
		Workers:  opts.workers,
	}
	return op.Execute(proc)
}

func main() {
	log.SetFlags(0)

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(utils.DecorateText(fmt.Sprintf("\nError resizing the image: %v", err), utils.ErrorMessage))
	}
}
