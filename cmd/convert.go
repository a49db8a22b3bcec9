// The convert command is the main command. It orchestrates the pipeline:
// read (file, stdin or --url) → extract → convert → render → write.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pastepipe/core"
	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/extract"
	"github.com/gaurav-prasanna/pastepipe/core/fetch"
	"github.com/gaurav-prasanna/pastepipe/core/match"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
	"github.com/gaurav-prasanna/pastepipe/core/output"
	"github.com/gaurav-prasanna/pastepipe/core/render"
	"github.com/gaurav-prasanna/pastepipe/core/walk"
	"github.com/gaurav-prasanna/pastepipe/internal/config"
)

// Flag variables.
var (
	flagURL       string
	flagSelect    string
	flagFormat    = formatValue("json")
	flagOutputDir string
	flagLinkify   bool
	flagPlain     bool
	flagPaste     bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [file|-]",
	Short: "Convert HTML or text to a delta and render it",
	Long: `Convert reads HTML or plain text from a file, standard input or a URL,
converts it to a Document Delta and renders the delta in the chosen format.

With --paste the input is pasted into an empty document instead, applying
the clipboard rules: trailing line handling and image file upload.

Examples:
  pastepipe convert page.html
  pbpaste | pastepipe convert - --format markdown --output_dir -
  pastepipe convert --url https://example.com --select article --format pdf
  pastepipe convert screenshot.png --paste --format html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&flagURL, "url", "", "Fetch the input from a URL")
	convertCmd.Flags().StringVar(&flagSelect, "select", "", "CSS selector narrowing a fetched page")
	convertCmd.Flags().Var(&flagFormat, "format", "Output format: "+strings.Join(config.Formats, ", "))
	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", `Output directory (default: current directory, "-" for stdout)`)
	convertCmd.Flags().BoolVar(&flagLinkify, "linkify", false, "Link bare URLs in text")
	convertCmd.Flags().BoolVar(&flagPlain, "plain", false, "Treat the input as plain text")
	convertCmd.Flags().BoolVar(&flagPaste, "paste", false, "Paste into an empty document")
}

// source is one input ready for conversion.
type source struct {
	Name  string
	Data  []byte
	HTML  bool
	Title string
	Lang  string
}

func runConvert(cmd *cobra.Command, args []string) error {
	applyConvertFlags(cmd)
	if flagURL != "" && len(args) > 0 {
		return fmt.Errorf("--url and a file argument are mutually exclusive")
	}

	renderer, err := selectRenderer(cfg.Output.Format)
	if err != nil {
		return err
	}
	logger := slog.Default()
	walker, err := newWalker(cfg.Convert, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := readSource(ctx, cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	var d delta.Delta
	if flagPaste {
		d, err = pasteSource(ctx, walker, src, logger)
		if err != nil {
			return err
		}
	} else {
		d = convertSource(walker, src)
	}
	logger.Debug("converted", "source", src.Name, "ops", len(d), "length", d.Length())

	meta := core.Metadata{
		Source:      src.Name,
		Title:       src.Title,
		Language:    src.Lang,
		ConvertedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := renderer.Render(d, meta)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return write(cmd, src.Name, data, renderer.Extension())
}

// applyConvertFlags lets flags given on the command line override the
// config file.
func applyConvertFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = flagFormat.String()
	}
	if flags.Changed("output_dir") {
		cfg.Output.Dir = flagOutputDir
	}
	if flags.Changed("select") {
		cfg.Convert.Selector = flagSelect
	}
	if flags.Changed("linkify") {
		cfg.Convert.Linkify = flagLinkify
	}
	if flags.Changed("plain") {
		cfg.Convert.PlainText = flagPlain
	}
}

// readSource loads the input named by args, or by --url.
func readSource(ctx context.Context, stdin io.Reader, args []string) (*source, error) {
	if flagURL != "" {
		return fetchSource(ctx, fetch.New(nil), flagURL, cfg.Convert.Selector)
	}

	name := output.Stdout
	if len(args) == 1 {
		name = args[0]
	}
	var (
		data []byte
		err  error
	)
	if name == output.Stdout {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name) // #nosec G304 -- input path is user-provided
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return &source{Name: name, Data: data, HTML: !cfg.Convert.PlainText && looksLikeHTML(data)}, nil
}

// fetchSource fetches a page and narrows it to its content.
func fetchSource(ctx context.Context, fetcher core.Fetcher, rawURL, selector string) (*source, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL)
	}

	result, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	src := &source{Name: rawURL}
	if strings.HasPrefix(result.ContentType, "text/plain") || cfg.Convert.PlainText {
		src.Data = []byte(result.HTML)
		return src, nil
	}

	var extractor core.Extractor = extract.New(extract.WithSelector(selector))
	content, err := extractor.Extract(result.HTML)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	src.Data = []byte(content)
	src.HTML = true
	src.Title = extract.Title(result.HTML)
	src.Lang = extract.Language(result.HTML)
	return src, nil
}

// looksLikeHTML reports whether data is markup. Fragments that do not
// start with a tag the sniffer knows still count when they start with "<".
func looksLikeHTML(data []byte) bool {
	if mimetype.Detect(data).Is("text/html") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(string(data)), "<")
}

func convertSource(c core.Converter, src *source) delta.Delta {
	if src.HTML {
		return c.Convert(walk.Input{HTML: string(src.Data)})
	}
	return c.Convert(walk.Input{Text: string(src.Data)})
}

// newWalker builds a walker with the configured extra matchers. They run
// after the built-ins, in config order.
func newWalker(cc config.ConvertConfig, logger *slog.Logger) (*walk.Walker, error) {
	w := walk.New(walk.WithLogger(logger))
	if cc.Linkify {
		if err := w.AddMatcher(match.TextNodes(), match.Linkify()); err != nil {
			return nil, err
		}
	}
	reg := w.Registry()
	for _, m := range cc.Matchers {
		sel, err := match.CSS(m.Selector)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidMatcher, err)
		}
		attrs := delta.Attrs(m.Attributes)
		err = w.AddMatcher(sel, func(_ *normalize.Node, d delta.Delta, _ match.State) delta.Delta {
			return reg.ApplyFormats(d, attrs)
		})
		if err != nil {
			return nil, err
		}
	}
	return w, nil
}

// selectRenderer creates the Renderer for a format name.
func selectRenderer(format string) (core.Renderer, error) {
	switch format {
	case "json":
		return render.NewJSONRenderer(), nil
	case "html":
		return render.NewHTMLRenderer(), nil
	case "text":
		return render.NewTextRenderer(), nil
	case "markdown":
		return render.NewMarkdownRenderer(), nil
	case "pdf":
		return render.NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownFormat, format)
	}
}

func write(cmd *cobra.Command, name string, data []byte, ext string) error {
	var writer *output.Writer
	if cfg.Output.Dir == output.Stdout {
		writer = output.NewStream(cmd.OutOrStdout())
	} else {
		var err error
		if writer, err = output.New(cfg.Output.Dir); err != nil {
			return fmt.Errorf("initializing output writer: %w", err)
		}
	}
	path, err := writer.Write(name, data, ext)
	if err != nil {
		return err
	}
	if path != output.Stdout {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
	}
	return nil
}
