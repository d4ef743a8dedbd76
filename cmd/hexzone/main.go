// Command hexzone turns GeoJSON boundaries into compact H3 cell sets and
// queries them.
//
// Usage:
//
//	hexzone regions generate [-r 7] [-c gzip] <input.geojson> <output>
//	hexzone regions export   [-r 7] <input> <output.geojson>
//	hexzone regions find     [-mode contains|intersects] [-ext .h3idz] <dir> <cell>...
//	hexzone regions overlaps [-strategy indexed|scan] <file>...
//	hexzone regions lookup   [-r 12] <dir> <cell> | <dir> <lat> <lon>
//	hexzone countries generate [-r 7] <dir> <output>
//	hexzone countries find   <mapfile> <cell>...
//	hexzone params generate  <input.json> <output>
//	hexzone params export    <input>
//
// Results are printed to stdout as JSON. File arguments name blobs in the
// configured store; with the default local store and no HEXZONE_ROOT they are
// plain paths. The store backend and runtime limits come from HEXZONE_*
// environment variables or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/paulmach/orb/geojson"

	"github.com/hupe1980/hexzone"
	"github.com/hupe1980/hexzone/blobstore"
	"github.com/hupe1980/hexzone/codec"
	"github.com/hupe1980/hexzone/internal/config"
)

const usage = `usage:
  hexzone regions generate [-r 7] [-c gzip] <input.geojson> <output>
  hexzone regions export   [-r 7] <input> <output.geojson>
  hexzone regions find     [-mode contains|intersects] [-ext .h3idz] <dir> <cell>...
  hexzone regions overlaps [-strategy indexed|scan] <file>...
  hexzone regions lookup   [-r 12] <dir> <cell> | <dir> <lat> <lon>
  hexzone countries generate [-r 7] <dir> <output>
  hexzone countries find   <mapfile> <cell>...
  hexzone params generate  <input.json> <output>
  hexzone params export    <input>
`

var (
	errUsage         = errors.New("invalid usage")
	errOverlapsFound = errors.New("overlaps found")
)

func init() {
	geojson.CustomJSONMarshaler = codec.GoJSON{}
	geojson.CustomJSONUnmarshaler = codec.GoJSON{}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	store  blobstore.BlobStore
	logger *hexzone.Logger
	stdout io.Writer
	stderr io.Writer
}

func (a *app) client(extra ...hexzone.Option) *hexzone.Client {
	return hexzone.New(a.store, append(a.cfg.Options(), extra...)...)
}

func (a *app) printJSON(v any) error {
	data, err := codec.Default.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "%s\n", data)
	return err
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "hexzone: %v\n", err)
		return 1
	}
	store, err := cfg.OpenStore(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "hexzone: open store: %v\n", err)
		return 1
	}
	a := &app{cfg: cfg, store: store, logger: cfg.Logger(), stdout: stdout, stderr: stderr}

	var cmd func(context.Context, []string) error
	switch args[0] + " " + args[1] {
	case "regions generate":
		cmd = a.regionsGenerate
	case "regions export":
		cmd = a.regionsExport
	case "regions find":
		cmd = a.regionsFind
	case "regions overlaps":
		cmd = a.regionsOverlaps
	case "regions lookup":
		cmd = a.regionsLookup
	case "countries generate":
		cmd = a.countriesGenerate
	case "countries find":
		cmd = a.countriesFind
	case "params generate":
		cmd = a.paramsGenerate
	case "params export":
		cmd = a.paramsExport
	default:
		fmt.Fprint(stderr, usage)
		return 1
	}

	if err := cmd(ctx, args[2:]); err != nil {
		switch {
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "hexzone: %v\n\n%s", err, usage)
		case errors.Is(err, errOverlapsFound):
			a.logger.WarnContext(ctx, "regions overlap")
		default:
			a.logger.ErrorContext(ctx, "command failed", "command", args[0]+" "+args[1], "error", err)
		}
		return 1
	}
	return 0
}
