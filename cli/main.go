package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"paralog-backend/base"
	"paralog-backend/queries"
	"paralog-backend/results"
	"paralog-backend/triplestore"

	"github.com/alexflint/go-arg"
)

type RenderCmd struct {
	Template string   `arg:"positional,required" help:"template name, see --help"`
	IRI      string   `arg:"--iri" help:"identifier substituted into the template"`
	Types    []string `arg:"--type,separate" help:"type filter, repeatable"`
}

type QueryCmd struct {
	File string `arg:"positional" default:"-" help:"file holding a SELECT or ASK query, - for stdin"`
}

type UpdateCmd struct {
	File string `arg:"positional" default:"-" help:"file holding a SPARQL update, - for stdin"`
}

type PingCmd struct{}

type CliArgs struct {
	Render *RenderCmd `arg:"subcommand:render" help:"print a rendered API query"`
	Query  *QueryCmd  `arg:"subcommand:query" help:"run a query against the triplestore and print flattened rows"`
	Update *UpdateCmd `arg:"subcommand:update" help:"run a SPARQL update against the triplestore"`
	Ping   *PingCmd   `arg:"subcommand:ping" help:"check that the triplestore answers"`

	Env      string `arg:"--env" default:".env" help:"dotenv file read before the environment"`
	LogLevel string `arg:"--log-level" default:"INFO"`
}

func (CliArgs) Description() string {
	return "administration utilities for the paralog triplestore\n\n" +
		"render templates: assessments, assessment-assets, asset-types, assessment-dependencies, asset, " +
		"dependents, providers, parts, residents, participations, participants, residences, assets-by-type, " +
		"flood-areas, polygon, states, buildings, building, class, superclasses, ping"
}

// main runs command-line utilities for administration tasks.
func main() {
	var args CliArgs
	parser := arg.MustParse(&args)
	if parser.Subcommand() == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	if err := base.LoadDotEnv(args.Env); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: base.ParseLevel(args.LogLevel)})))
	if err := run(context.Background(), args, os.Stdout); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args CliArgs, out io.Writer) error {
	switch {
	case args.Render != nil:
		query, err := render(queries.NewLibrary(nil), args.Render)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, query)
		return err
	}

	cfg := base.LoadConfig()
	client := triplestore.NewClient(cfg.Jena)
	switch {
	case args.Query != nil:
		query, err := readInput(args.Query.File)
		if err != nil {
			return err
		}
		bs, err := client.Query(ctx, query, nil)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results.Flatten(bs))
	case args.Update != nil:
		update, err := readInput(args.Update.File)
		if err != nil {
			return err
		}
		if err := client.Update(ctx, update, nil); err != nil {
			return err
		}
		slog.Info("update applied", "endpoint", client.Endpoint())
		return nil
	case args.Ping != nil:
		if err := client.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok", client.Endpoint())
		return nil
	default:
		return fmt.Errorf("unknown subcommand")
	}
}

func render(lib *queries.Library, cmd *RenderCmd) (string, error) {
	switch cmd.Template {
	case "assessments":
		return lib.AllAssessments()
	case "assessment-assets":
		return lib.AssetsByAssessment(cmd.IRI, cmd.Types)
	case "asset-types":
		return lib.AssetTypesByAssessment(cmd.IRI)
	case "assessment-dependencies":
		return lib.DependenciesByAssessment(cmd.IRI, cmd.Types)
	case "asset":
		return lib.Asset(cmd.IRI)
	case "dependents":
		return lib.Dependencies(cmd.IRI, queries.Dependents)
	case "providers":
		return lib.Dependencies(cmd.IRI, queries.Providers)
	case "parts":
		return lib.AssetParts(cmd.IRI)
	case "residents":
		return lib.Residents(cmd.IRI)
	case "participations":
		return lib.Participations(cmd.IRI)
	case "participants":
		return lib.Participants(cmd.IRI)
	case "residences":
		return lib.Residences(cmd.IRI)
	case "assets-by-type":
		return lib.AssetsByType(cmd.IRI)
	case "flood-areas":
		return lib.FloodAreas()
	case "polygon":
		return lib.FloodAreaPolygon(cmd.IRI)
	case "states":
		return lib.States(cmd.IRI)
	case "buildings":
		return lib.Buildings()
	case "building":
		return lib.Building(cmd.IRI)
	case "class":
		return lib.OntologyClass(cmd.IRI)
	case "superclasses":
		return lib.Superclasses(cmd.Types)
	case "ping":
		return lib.Ping(), nil
	default:
		return "", fmt.Errorf("unknown template %q", cmd.Template)
	}
}

func readInput(file string) (string, error) {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
