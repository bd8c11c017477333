package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"usecase-backend/internal/config"
	"usecase-backend/internal/logging"
	"usecase-backend/internal/models"
	"usecase-backend/internal/services"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `Generate a Mermaid diagram from a use case description.

Usage:
  usecase-diagram --output <path> [--description <text>] [--model o1|o3|o4] [--api-key <key>]

When --description is omitted the description is read from standard input.

Flags:
  --description   description of the use case
  --output        path to the output SVG (required)
  --model         model to use: o1, o3 or o4 (default o1)
  --api-key       OpenAI API key overriding OPENAI_API_KEY
  --verbose       log pipeline progress to stderr
`

// Generator is the validate -> dispatch -> render pipeline.
type Generator interface {
	Generate(ctx context.Context, req models.UseCaseRequest) (*services.Diagram, error)
}

// GeneratorFactory builds the pipeline once flags are parsed.
type GeneratorFactory func(logger *zap.SugaredLogger) (Generator, error)

// Run executes the command and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return run(context.Background(), args, stdin, stdout, stderr, NewGenerator)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, factory GeneratorFactory) int {
	fs := flag.NewFlagSet("usecase-diagram", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	description := fs.String("description", "", "")
	output := fs.String("output", "", "")
	model := fs.String("model", services.DefaultModel, "")
	apiKey := fs.String("api-key", "", "")
	verbose := fs.Bool("verbose", false, "")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(stdout, usage)
			return exitOK
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	if *output == "" {
		fmt.Fprintln(stderr, "error: --output is required")
		return exitUsage
	}
	if !services.IsKnownModel(*model) {
		fmt.Fprintf(stderr, "error: invalid --model %q (choose from o1, o3, o4)\n", *model)
		return exitUsage
	}

	text := *description
	if text == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "error: failed to read description from stdin: %v\n", err)
			return exitError
		}
		text = string(data)
	}

	logger := logging.Nop()
	if *verbose {
		l, err := logging.New(true, "debug")
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitError
		}
		defer l.Sync()
		logger = l
	}

	gen, err := factory(logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	diagram, err := gen.Generate(ctx, models.UseCaseRequest{
		Description: text,
		Model:       *model,
		APIKey:      *apiKey,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	if err := os.WriteFile(*output, diagram.Image, 0o644); err != nil {
		fmt.Fprintf(stderr, "error: failed to write %s: %v\n", *output, err)
		return exitError
	}

	fmt.Fprintln(stdout, "Diagram saved to", *output)
	return exitOK
}

// NewGenerator builds the production pipeline from the environment. The
// CLI always renders, whatever RENDER_MODE says.
func NewGenerator(logger *zap.SugaredLogger) (Generator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	client := services.NewOpenAIClient(cfg.OpenAI)
	dispatcher, err := services.NewDispatcher(services.NewOpenAIBackends(client, cfg.OpenAI, logger), logger)
	if err != nil {
		return nil, err
	}
	renderer := services.NewKrokiRenderer(cfg.KrokiURL, cfg.RenderTimeout, logger)

	return services.NewDiagramService(services.NewValidator(cfg.MaxDescriptionLength), dispatcher, renderer, true, logger), nil
}
