package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/trialscope/internal/normalize"
	"github.com/pdiddy/trialscope/internal/pipeline"
	"github.com/pdiddy/trialscope/internal/secrets"
	"github.com/pdiddy/trialscope/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the research pipeline for a condition or intervention",
	Long: `Analyze queries the registered sources concurrently for trials matching
the filter, merges duplicates across registries, and reports comparative
insights. Literature (--literature) and safety (--safety) sources are
opt-in. Sources that fail are reported in the output; they never abort
the run.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("condition", "", "medical condition to search for")
	analyzeCmd.Flags().String("intervention", "", "drug or treatment of interest")
	analyzeCmd.Flags().String("phase", "", "restrict to trial phases (comma-separated, e.g. \"phase 2,phase 3\")")
	analyzeCmd.Flags().String("country", "", "restrict to trial site countries (comma-separated)")
	analyzeCmd.Flags().String("from", "", "trial start / publication date range start (YYYY-MM-DD)")
	analyzeCmd.Flags().String("to", "", "trial start / publication date range end (YYYY-MM-DD)")
	analyzeCmd.Flags().Int("max-results", 0, "maximum trials in the output (default 50)")
	analyzeCmd.Flags().Bool("literature", false, "include PubMed publications")
	analyzeCmd.Flags().Bool("safety", false, "include openFDA adverse events and the safety profile")
	analyzeCmd.Flags().String("filter-file", "", "load the filter from a YAML file instead of flags")
	analyzeCmd.Flags().String("save-filter", "", "save the effective filter to a YAML file")
	analyzeCmd.Flags().String("output", "", "save the full result envelope to a YAML file")
	analyzeCmd.Flags().Bool("json", false, "print the full result envelope as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save-filter"); path != "" {
		if err := pipeline.WriteFilterFile(path, filter); err != nil {
			return err
		}
	}

	cfg := pipelineConfig()
	secrets.Apply(loadedSecrets, &cfg.Retrieval)

	includeLit, _ := cmd.Flags().GetBool("literature")
	includeSafety, _ := cmd.Flags().GetBool("safety")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	opts := pipeline.Options{
		IncludeLiterature: includeLit,
		IncludeSafety:     includeSafety,
		MaxTrials:         maxResults,
	}

	client := &http.Client{Timeout: cfg.Retrieval.Timeout}
	p := pipeline.New(pipeline.DefaultAdapters(client, opts), cfg, os.Stderr)

	env, err := p.Run(cmd.Context(), filter, opts)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := pipeline.WriteEnvelopeFile(path, env); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved result envelope to %s\n", path)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	}
	printEnvelope(os.Stdout, env)
	return nil
}

// buildFilter constructs the structured filter from --filter-file or the
// individual flags. Flags layer on top of a loaded file.
func buildFilter(cmd *cobra.Command) (types.StructuredFilter, error) {
	var filter types.StructuredFilter

	if path, _ := cmd.Flags().GetString("filter-file"); path != "" {
		loaded, err := pipeline.ReadFilterFile(path)
		if err != nil {
			return filter, err
		}
		filter = loaded
	}

	if v, _ := cmd.Flags().GetString("condition"); v != "" {
		filter.Condition = v
	}
	if v, _ := cmd.Flags().GetString("intervention"); v != "" {
		filter.Intervention = v
	}
	if v, _ := cmd.Flags().GetString("phase"); v != "" {
		filter.Phases = nil
		for _, raw := range splitList(v) {
			filter.Phases = append(filter.Phases, normalize.NormalizePhase(raw))
		}
	}
	if v, _ := cmd.Flags().GetString("country"); v != "" {
		filter.Countries = nil
		for _, raw := range splitList(v) {
			filter.Countries = append(filter.Countries, normalize.NormalizeCountry(raw))
		}
	}
	if v, _ := cmd.Flags().GetString("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("invalid --from date %q: %w", v, err)
		}
		filter.DateFrom = t
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("invalid --to date %q: %w", v, err)
		}
		filter.DateTo = t
	}
	if v, _ := cmd.Flags().GetInt("max-results"); v > 0 {
		filter.MaxResults = v
	}
	return filter, nil
}

// pipelineConfig reads pipeline settings from viper, falling back to the
// documented defaults for anything unset.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Retrieval: types.RetrievalConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("http_timeout"),
				UserAgent: viper.GetString("user_agent"),
			},
			SourceTimeout: viper.GetDuration("source_timeout"),
			RetryBackoff:  viper.GetDuration("retry_backoff"),
			NCBIAPIKey:    viper.GetString("ncbi_api_key"),
			NCBIEmail:     viper.GetString("ncbi_email"),
			OpenFDAAPIKey: viper.GetString("openfda_api_key"),
		},
		Deadline:  viper.GetDuration("deadline"),
		MaxTrials: viper.GetInt("max_trials"),
	}
	return cfg.Defaults()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// printEnvelope renders the human-readable report.
func printEnvelope(w io.Writer, env types.ResultEnvelope) {
	fmt.Fprintln(w, env.Insights.Overview)
	fmt.Fprintln(w)

	if len(env.Trials) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPHASE\tSTATUS\tTITLE")
		for _, trial := range env.Trials {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", trial.ID, trial.Phase, trial.Status, truncate(trial.Title, 60))
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	if env.Safety != nil {
		fmt.Fprintf(w, "Safety: %s\n", env.Safety.Summary)
		for _, warning := range env.Safety.BlackBoxWarnings {
			fmt.Fprintf(w, "  !! %s\n", warning)
		}
		for _, warning := range env.Safety.Warnings {
			fmt.Fprintf(w, "  !  %s\n", warning)
		}
		fmt.Fprintln(w)
	}

	printSection(w, "Key findings", env.Insights.KeyFindings)
	printSection(w, "Patterns", env.Insights.Patterns)
	printSection(w, "Recommendations", env.Insights.Recommendations)
	printSection(w, "Gaps", env.Insights.Gaps)

	if len(env.Errors) > 0 {
		fmt.Fprintln(w, "Source errors:")
		for _, e := range env.Errors {
			fmt.Fprintf(w, "  - %s (%s): %s\n", e.Source, e.Kind, e.Message)
		}
	}
	if env.DroppedCandidates > 0 {
		fmt.Fprintf(w, "Dropped %d records with missing required fields.\n", env.DroppedCandidates)
	}
}

func printSection(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, line := range lines {
		fmt.Fprintf(w, "  - %s\n", line)
	}
	fmt.Fprintln(w)
}
