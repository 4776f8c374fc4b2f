package source

import (
	"context"
	"os/exec"
	"strings"

	"github.com/ailert/ailert/internal/model"
)

// Kaggle lists competitions through the kaggle CLI. Output is a fixed-width
// table sorted by prize; rows are parsed by column position.
type Kaggle struct {
	Bin       string
	ConfigDir string
}

func NewKaggle(bin, configDir string) *Kaggle {
	if bin == "" {
		bin = "kaggle"
	}
	return &Kaggle{Bin: bin, ConfigDir: configDir}
}

func (k *Kaggle) Name() string { return "kaggle" }

func (k *Kaggle) Fetch(ctx context.Context) ([]model.Record, error) {
	cmd := exec.CommandContext(ctx, k.Bin, "competitions", "list", "--sort-by", "prize")
	if k.ConfigDir != "" {
		cmd.Env = append(cmd.Environ(), "KAGGLE_CONFIG_DIR="+k.ConfigDir)
	}

	out, err := cmd.Output()
	if err != nil {
		return nil, Unavailable(k.Name(), err)
	}

	return parseCompetitionTable(string(out)), nil
}

// parseCompetitionTable extracts competition rows from the CLI's tabular
// stdout. Only lines carrying a kaggle.com link are data rows; everything
// else is header or separator. Rows missing the expected columns are skipped
// rather than failing the batch.
func parseCompetitionTable(out string) []model.Record {
	var records []model.Record
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.Contains(line, "https://www.kaggle.com") {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) < 5 {
			continue
		}

		link := cols[0]
		name := link[strings.LastIndex(link, "/")+1:]
		if name == "" {
			continue
		}

		records = append(records, model.Record{
			Title:    name,
			Link:     link,
			Source:   "Kaggle",
			Deadline: cols[1],
			Reward:   cols[4],
		})
	}
	return records
}
