package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"time"
)

const MaxResults = 5

type Recommendation struct {
	ConsultantID uint    `json:"consultant_id"`
	Score        float64 `json:"score"`
}

// Recommender runs an external scoring program. The program receives the
// user id as its last argument and prints a JSON array of recommendations.
type Recommender struct {
	command string
	args    []string
	timeout time.Duration
}

func New(command string, args []string, timeout time.Duration) *Recommender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Recommender{command: command, args: args, timeout: timeout}
}

func (r *Recommender) Enabled() bool {
	return r != nil && r.command != ""
}

func (r *Recommender) Recommend(ctx context.Context, userID uint) ([]Recommendation, error) {
	if !r.Enabled() {
		return []Recommendation{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(append([]string{}, r.args...), strconv.FormatUint(uint64(userID), 10))
	cmd := exec.CommandContext(ctx, r.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("recommender %s: %w (stderr: %s)", r.command, err, bytes.TrimSpace(stderr.Bytes()))
	}

	return parse(stdout.Bytes())
}

func parse(out []byte) ([]Recommendation, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return []Recommendation{}, nil
	}

	var recs []Recommendation
	if err := json.Unmarshal(out, &recs); err != nil {
		return nil, fmt.Errorf("decode recommender output: %w", err)
	}

	valid := recs[:0]
	for _, rec := range recs {
		if rec.ConsultantID == 0 {
			continue
		}
		if rec.Score > 1 {
			rec.Score = 1
		}
		valid = append(valid, rec)
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Score > valid[j].Score })
	if len(valid) > MaxResults {
		valid = valid[:MaxResults]
	}
	return valid, nil
}
