package cmd

import (
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/killallgit/persona-api/pkg/config"
)

// Set with -ldflags "-X github.com/killallgit/persona-api/cmd.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and retrieval stack",
	Long: `Print the build version of the Persona API together with the
embedding model and vector backend the current configuration selects.

Vectors written under one embedding model cannot be searched with another,
so the model line is the quickest way to confirm which index a deployment
is reading.`,
	Args: cobra.NoArgs,
	Run:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "print just the version number")
}

func runVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	if short, _ := cmd.Flags().GetBool("short"); short {
		fmt.Fprintf(out, "v%s\n", Version)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "persona-api\tv%s\n", Version)
	fmt.Fprintf(w, "commit\t%s\n", GitCommit)
	fmt.Fprintf(w, "built\t%s\n", BuildTime)
	fmt.Fprintf(w, "go\t%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	writeStack(w)
	w.Flush()
}

// writeStack reports the configured retrieval stack. Version must work
// without a valid config, so a load failure is printed rather than returned.
func writeStack(w io.Writer) {
	cfg, err := loadStackConfig()
	if err != nil {
		fmt.Fprintf(w, "config\tunavailable (%v)\n", err)
		return
	}
	fmt.Fprintf(w, "embeddings\t%s\n", describeEmbedding(cfg.Embedding))
	fmt.Fprintf(w, "vector store\t%s\n", describeVectorStore(cfg.VectorStore))
}

func loadStackConfig() (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	return config.GetConfig()
}

func describeEmbedding(e config.EmbeddingConfig) string {
	if e.Provider == "openai" {
		return fmt.Sprintf("openai %s (%d dims)", e.Model, e.Dimensions)
	}
	return fmt.Sprintf("%s (%d dims)", e.Provider, e.Dimensions)
}

func describeVectorStore(v config.VectorStoreConfig) string {
	switch v.Provider {
	case "qdrant":
		return fmt.Sprintf("qdrant %s, collection %s", v.QdrantURL, v.IndexName)
	case "pgvector":
		return fmt.Sprintf("pgvector, table for index %s", v.IndexName)
	default:
		return fmt.Sprintf("%s, index %s", v.Provider, v.IndexName)
	}
}
