package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:           "mca",
		Short:         "Align quotes to transcripts and cut verified media clips",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().String("public-dir", getenvDefault("PUBLIC_DIR", "public/generated"), "Directory for generated artifacts")
	root.PersistentFlags().String("db", defaultDBPath(), "SQLite database path")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
	root.PersistentFlags().Bool("json-logs", false, "JSON log output")

	root.AddCommand(newClipCmd(), newProcessCmd())

	if err := root.Execute(); err != nil {
		// The serving layer parses the last stderr line as JSON.
		b, _ := json.Marshal(map[string]string{"status": "failed", "error": err.Error()})
		fmt.Fprintln(os.Stderr, string(b))
		os.Exit(1)
	}
}

func defaultDBPath() string {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "dev.db"
	}
	if len(url) > 5 && url[:5] == "file:" {
		url = url[5:]
	}
	return url
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func printResult(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(b))
	return nil
}
