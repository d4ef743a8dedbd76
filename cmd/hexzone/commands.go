package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/hexzone"
	"github.com/hupe1980/hexzone/blobstore"
	"github.com/hupe1980/hexzone/cell"
	"github.com/hupe1980/hexzone/codec"
	"github.com/hupe1980/hexzone/geo"
	"github.com/hupe1980/hexzone/overlap"
	"github.com/hupe1980/hexzone/params"
)

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string, minArgs int) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < minArgs {
		return fmt.Errorf("%w: %s needs at least %d arguments", errUsage, fs.Name(), minArgs)
	}
	return nil
}

// dirPrefix turns a directory argument into a store prefix.
func dirPrefix(dir string) string {
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" || dir == "." {
		return ""
	}
	return dir + "/"
}

func parseCells(args []string) ([]cell.Cell, error) {
	cells := make([]cell.Cell, 0, len(args))
	for _, s := range args {
		c, err := cell.Parse(s)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

type generateResult struct {
	Output     string `json:"output"`
	Resolution int    `json:"resolution"`
	Cells      int    `json:"cells"`
}

func (a *app) regionsGenerate(ctx context.Context, args []string) error {
	fs := a.flags("regions generate")
	res := fs.Int("r", 7, "cell resolution")
	comp := fs.String("c", "", "compression: gzip, zstd, lz4 or none")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	input, output := fs.Arg(0), fs.Arg(1)

	var opts []hexzone.Option
	if *comp != "" {
		c, err := codec.ParseCompression(*comp)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		opts = append(opts, hexzone.WithCompression(c))
	}

	r, err := blobstore.OpenReader(ctx, a.store, input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer r.Close()

	set, err := a.client(opts...).GenerateRegion(ctx, r, output, *res)
	if err != nil {
		return err
	}
	return a.printJSON(generateResult{Output: output, Resolution: *res, Cells: len(set)})
}

func (a *app) regionsExport(ctx context.Context, args []string) error {
	fs := a.flags("regions export")
	res := fs.Int("r", 7, "cell resolution of the exported cover")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	input, output := fs.Arg(0), fs.Arg(1)

	client := a.client()
	return blobstore.WriteTo(ctx, a.store, output, func(w io.Writer) error {
		return client.ExportRegion(ctx, input, *res, w)
	})
}

func (a *app) regionsFind(ctx context.Context, args []string) error {
	fs := a.flags("regions find")
	modeName := fs.String("mode", "contains", "match mode: contains or intersects")
	ext := fs.String("ext", hexzone.DefaultExtension, "extension of the cell set files")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	mode, err := hexzone.ParseFindMode(*modeName)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	needles, err := parseCells(fs.Args()[1:])
	if err != nil {
		return err
	}

	result, err := a.client(hexzone.WithExtension(*ext)).Find(ctx, needles, dirPrefix(fs.Arg(0)), mode)
	if err != nil {
		return err
	}
	return a.printJSON(result)
}

func (a *app) regionsOverlaps(ctx context.Context, args []string) error {
	fs := a.flags("regions overlaps")
	strategyName := fs.String("strategy", "", "overlap strategy: indexed or scan")
	if err := parse(fs, args, 2); err != nil {
		return err
	}

	var opts []hexzone.Option
	if *strategyName != "" {
		s, err := overlap.ParseStrategy(*strategyName)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		opts = append(opts, hexzone.WithOverlapStrategy(s))
	}

	report, err := a.client(opts...).Overlaps(ctx, fs.Args())
	if err != nil {
		return err
	}
	if err := a.printJSON(report.Canonical()); err != nil {
		return err
	}
	if !report.Empty() {
		return errOverlapsFound
	}
	return nil
}

func (a *app) regionsLookup(ctx context.Context, args []string) error {
	fs := a.flags("regions lookup")
	res := fs.Int("r", 12, "resolution used for coordinates")
	if err := parse(fs, args, 2); err != nil {
		return err
	}

	var target cell.Cell
	switch fs.NArg() {
	case 2:
		c, err := cell.Parse(fs.Arg(1))
		if err != nil {
			return err
		}
		target = c
	case 3:
		lat, err := strconv.ParseFloat(fs.Arg(1), 64)
		if err != nil {
			return fmt.Errorf("%w: latitude: %v", errUsage, err)
		}
		lng, err := strconv.ParseFloat(fs.Arg(2), 64)
		if err != nil {
			return fmt.Errorf("%w: longitude: %v", errUsage, err)
		}
		if target, err = geo.FromLatLng(lat, lng, *res); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: regions lookup takes a cell or a latitude and longitude", errUsage)
	}

	client := a.client()
	names, err := client.List(ctx, dirPrefix(fs.Arg(0)))
	if err != nil {
		return err
	}
	result, err := client.Lookup(ctx, target, names)
	if err != nil {
		return err
	}
	return a.printJSON(result)
}

func (a *app) countriesGenerate(ctx context.Context, args []string) error {
	fs := a.flags("countries generate")
	res := fs.Int("r", 7, "cell resolution")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	output := fs.Arg(1)

	nodes, err := a.client().GenerateCountries(ctx, dirPrefix(fs.Arg(0)), output, *res)
	if err != nil {
		return err
	}
	return a.printJSON(generateResult{Output: output, Resolution: *res, Cells: nodes})
}

func (a *app) countriesFind(ctx context.Context, args []string) error {
	fs := a.flags("countries find")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	cells, err := parseCells(fs.Args()[1:])
	if err != nil {
		return err
	}

	result, err := a.client().FindCountries(ctx, fs.Arg(0), cells)
	if err != nil {
		return err
	}
	return a.printJSON(result)
}

type paramsResult struct {
	Output   string `json:"output"`
	Channels int    `json:"channels"`
}

func (a *app) paramsGenerate(ctx context.Context, args []string) error {
	fs := a.flags("params generate")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	input, output := fs.Arg(0), fs.Arg(1)

	r, err := blobstore.OpenReader(ctx, a.store, input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer r.Close()

	p, err := params.ReadJSON(r)
	if err != nil {
		return err
	}
	if err := blobstore.WriteTo(ctx, a.store, output, func(w io.Writer) error {
		return params.Write(w, p)
	}); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "region params written", "output", output, "channels", len(p.RegionParams))
	return a.printJSON(paramsResult{Output: output, Channels: len(p.RegionParams)})
}

func (a *app) paramsExport(ctx context.Context, args []string) error {
	fs := a.flags("params export")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	input := fs.Arg(0)

	r, err := blobstore.OpenReader(ctx, a.store, input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer r.Close()

	p, err := params.Read(r)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	return params.WriteJSON(a.stdout, p)
}
