package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opetrenko/vivavoce/internal/exam"
	"github.com/opetrenko/vivavoce/internal/examiner"
	"github.com/opetrenko/vivavoce/internal/handler"
	appI18n "github.com/opetrenko/vivavoce/internal/i18n"
	"github.com/opetrenko/vivavoce/internal/llm"
	"github.com/opetrenko/vivavoce/internal/model"
	"github.com/opetrenko/vivavoce/internal/questionbank"
	"github.com/opetrenko/vivavoce/internal/results"
	"github.com/opetrenko/vivavoce/internal/roster"
	"github.com/opetrenko/vivavoce/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vivavoce",
		Short: "Automated oral examination server powered by LLMs",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `vivavoce --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP exam server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "vivavoce.db", "SQLite database path for the results archive")
	f.StringP("questions", "q", "themes.txt", "Path to the question themes file")
	f.StringP("roster", "r", "students.txt", "Path to the registered students file")
	f.String("results-dir", "exam_results", "Directory for per-session result files")
	f.String("course", "French", "Course name used in the examiner persona")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.StringP("lang", "l", "en", "UI language (en, uk)")
	f.IntP("num-questions", "n", exam.DefaultNumQuestions, "Number of questions per exam")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export archived exam results as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "vivavoce.db", "SQLite database path for the results archive")
	f.String("exam-id", "", "Exam identifier for output (required)")
	f.String("subject", "", "Subject name for output (required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("exam-id")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("VIVAVOCE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("vivavoce")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/vivavoce")
	v.AddConfigPath("/etc/vivavoce")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// The roster is mandatory: without it no student can be admitted.
	reg, err := roster.Load(v.GetString("roster"))
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	slog.Info("roster loaded", "path", v.GetString("roster"), "students", reg.Size())

	// The question bank falls back to built-in samples when the file is
	// missing or unreadable.
	bank := questionbank.Load(v.GetString("questions"))
	slog.Info("question bank ready", "path", v.GetString("questions"), "themes", bank.Size())

	// Open the results archive.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	// Create LLM client.
	llmClient := llm.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
	)
	if err := llmClient.Ping(context.Background()); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))

	numQuestions := v.GetInt("num-questions")
	if numQuestions <= 0 {
		numQuestions = exam.DefaultNumQuestions
	}

	examCfg := model.ExamConfig{
		Course:       v.GetString("course"),
		NumQuestions: numQuestions,
		Questions:    v.GetString("questions"),
		Roster:       v.GetString("roster"),
		ResultsDir:   v.GetString("results-dir"),
		Lang:         lang,
	}

	writer := results.NewWriter(examCfg.ResultsDir)
	manager := exam.NewManager(bank, reg, writer, numQuestions).WithArchive(db)

	ex, err := examiner.New(llmClient, manager, examCfg)
	if err != nil {
		return fmt.Errorf("create examiner: %w", err)
	}

	h := handler.New(ex, db, examCfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"course", examCfg.Course,
		"num_questions", examCfg.NumQuestions,
		"results_dir", examCfg.ResultsDir,
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	summaries, err := db.ListSummaries()
	if err != nil {
		return fmt.Errorf("list summaries: %w", err)
	}

	export := model.ResultsExport{
		ExamID:     v.GetString("exam-id"),
		Subject:    v.GetString("subject"),
		ExportedAt: time.Now().UTC(),
		Results:    summaries,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}
