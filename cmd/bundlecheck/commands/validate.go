package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	sc "github.com/reoring/shapecheck"
	"github.com/reoring/shapecheck/bundle"
	"github.com/reoring/shapecheck/i18n"
	"github.com/reoring/shapecheck/source"
)

// ErrInvalid is returned when at least one descriptor failed to load or
// validate. The details have already been rendered.
var ErrInvalid = errors.New("invalid descriptor")

type violationView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path"`
	Pointer string `json:"pointer"`
}

type fileResult struct {
	File       string          `json:"file"`
	Valid      bool            `json:"valid"`
	Error      string          `json:"error,omitempty"`
	Violations []violationView `json:"violations,omitempty"`
}

type validateOptions struct {
	all        bool
	lang       string
	output     string
	maxDepth   int
	maxNesting int
	maxBytes   int64
}

func newValidateCommand() *cobra.Command {
	opts := validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate bundle descriptor files",
		Long: `Validate bundle descriptor files against the descriptor constraints.

By default validation stops at the first violation of each file, in field
declaration order. Use --all to report every violation.`,
		Example: `  # Validate a descriptor
  bundlecheck validate entando.yaml

  # Report every violation as JSON, in Japanese
  bundlecheck validate --all --output json --lang ja entando.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unsupported output %q (want text or json)", opts.output)
			}
			if opts.lang == "" {
				opts.lang = os.Getenv("SHAPECHECK_LANG")
			}
			i18n.SetLanguage(opts.lang)

			results := make([]fileResult, 0, len(args))
			for _, path := range args {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				results = append(results, validateFile(path, opts))
			}

			if err := render(cmd.OutOrStdout(), opts.output, results); err != nil {
				return err
			}
			for _, r := range results {
				if !r.Valid {
					return ErrInvalid
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "report every violation instead of the first one")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "message language: en or ja (default $SHAPECHECK_LANG or en)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum path depth (field and index segments) validated (0 = default)")
	cmd.Flags().IntVar(&opts.maxNesting, "max-nesting", 0, "maximum nested objects and arrays accepted when decoding (0 = default)")
	cmd.Flags().Int64Var(&opts.maxBytes, "max-bytes", 0, "maximum descriptor size in bytes (0 = unlimited)")

	return cmd
}

func validateFile(path string, opts validateOptions) fileResult {
	logger := log.With().Str("file", path).Logger()
	logger.Debug().Bool("all", opts.all).Msg("Validating descriptor")

	res := fileResult{File: path}
	rec, err := source.LoadFile(path, source.Options{MaxDepth: opts.maxNesting, MaxBytes: opts.maxBytes})
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to load descriptor")
		res.Error = err.Error()
		return res
	}

	vopt := sc.ValidateOpt{MaxDepth: opts.maxDepth}
	if opts.all {
		err = bundle.ValidateAll(rec, vopt)
	} else {
		err = bundle.Validate(rec, vopt)
	}
	if err == nil {
		res.Valid = true
		logger.Debug().Msg("Descriptor is valid")
		return res
	}

	var violations sc.Issues
	if iss, ok := sc.AsIssues(err); ok {
		violations = iss
	} else if ve, ok := sc.AsValidationError(err); ok {
		violations = sc.Issues{ve}
	} else {
		res.Error = err.Error()
		return res
	}
	for _, ve := range violations {
		logger.Debug().Str("code", ve.Code).Str("path", ve.Location()).Msg("Violation")
		res.Violations = append(res.Violations, violationView{
			Code:    ve.Code,
			Message: ve.Message,
			Path:    ve.Location(),
			Pointer: ve.Pointer(),
		})
	}
	return res
}

func render(w io.Writer, format string, results []fileResult) error {
	if format == "json" {
		b, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	for _, r := range results {
		switch {
		case r.Valid:
			fmt.Fprintf(w, "%s: OK\n", r.File)
		case r.Error != "":
			fmt.Fprintf(w, "%s: %s\n", r.File, r.Error)
		default:
			for _, v := range r.Violations {
				fmt.Fprintf(w, "%s: %s\n  at %s\n", r.File, v.Message, v.Path)
			}
		}
	}
	return nil
}
