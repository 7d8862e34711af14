// Command parcel-import registers the parcels of a shapefile with a running
// registry server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"landregistry/internal/platform/logger"
	"landregistry/pkg/platform/middleware/auth"
)

type options struct {
	file       string
	server     string
	token      string
	signingKey string
	issuer     string
	principal  string
	dryRun     bool
	cols       columns
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	log := logger.New("info")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := run(ctx, opts, log)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import finished", "registered", summary.registered, "skipped", summary.skipped)
	if summary.skipped > 0 {
		os.Exit(3)
	}
}

func parseFlags(args []string, out io.Writer) (options, error) {
	fs := flag.NewFlagSet("parcel-import", flag.ContinueOnError)
	fs.SetOutput(out)

	opts := options{cols: defaultColumns()}
	fs.StringVar(&opts.file, "file", "", "path to the parcel .shp file")
	fs.StringVar(&opts.server, "server", "http://localhost:8080", "registry base URL")
	fs.StringVar(&opts.token, "token", os.Getenv("REGISTRY_TOKEN"), "bearer token of a registrar")
	fs.StringVar(&opts.signingKey, "signing-key", "", "HMAC key used to mint a token when -token is empty")
	fs.StringVar(&opts.issuer, "issuer", "", "issuer claim for a minted token")
	fs.StringVar(&opts.principal, "principal", "", "registrar principal for a minted token")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "validate rows without calling the registry")
	fs.StringVar(&opts.cols.Area, "area-field", opts.cols.Area, "attribute holding the area in square feet")
	fs.StringVar(&opts.cols.Value, "value-field", opts.cols.Value, "attribute holding the assessed value")
	fs.StringVar(&opts.cols.Legal, "legal-field", opts.cols.Legal, "attribute holding the legal description")
	fs.StringVar(&opts.cols.Type, "type-field", opts.cols.Type, "attribute holding the property type")
	fs.StringVar(&opts.cols.Zoning, "zoning-field", opts.cols.Zoning, "attribute holding the zoning code")
	fs.StringVar(&opts.cols.TaxID, "tax-field", opts.cols.TaxID, "attribute holding the tax id")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.file == "" {
		fmt.Fprintln(out, "-file is required")
		return options{}, errors.New("missing -file")
	}
	return opts, nil
}

// bearer returns the configured token or mints a short-lived one.
func (o options) bearer(now time.Time) (string, error) {
	if o.token != "" {
		return o.token, nil
	}
	if o.signingKey == "" || o.principal == "" {
		return "", errors.New("either -token or both -signing-key and -principal are required")
	}
	return auth.NewHMACValidator(o.signingKey, o.issuer).Issue(o.principal, time.Hour, now)
}

type summary struct {
	registered int
	skipped    int
}

func run(ctx context.Context, opts options, log *slog.Logger) (summary, error) {
	parcels, err := readParcels(opts.file)
	if err != nil {
		return summary{}, err
	}

	var client *registryClient
	if !opts.dryRun {
		token, err := opts.bearer(time.Now())
		if err != nil {
			return summary{}, err
		}
		client = newRegistryClient(opts.server, token)
	}

	var s summary
	for _, p := range parcels {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		req, err := toRequest(p, opts.cols)
		if err != nil {
			log.Warn("skipping parcel", "row", p.Row, "error", err)
			s.skipped++
			continue
		}
		if client == nil {
			s.registered++
			continue
		}
		id, err := client.register(ctx, req)
		if err != nil {
			log.Warn("skipping parcel", "row", p.Row, "error", err)
			s.skipped++
			continue
		}
		log.Info("registered parcel", "row", p.Row, "property_id", id)
		s.registered++
	}
	return s, nil
}
