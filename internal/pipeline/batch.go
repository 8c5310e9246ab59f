package pipeline

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/querysmith/internal/model"
	"github.com/ppiankov/querysmith/internal/worker"
)

// Builder builds a report from a natural-language question
type Builder interface {
	Natural(ctx context.Context, question string, intent model.Intent, mode model.PrecisionMode) (*model.Report, error)
}

// QuestionJob builds the report for one question of a batch
type QuestionJob struct {
	Index    int
	Question string
	Intent   model.Intent
	Mode     model.PrecisionMode
	Builder  Builder
}

// Execute runs the job
func (j *QuestionJob) Execute(ctx context.Context) *BatchResult {
	report, err := j.Builder.Natural(ctx, j.Question, j.Intent, j.Mode)
	return &BatchResult{
		Index:    j.Index,
		Question: j.Question,
		Report:   report,
		Error:    err,
	}
}

// BatchResult is the outcome for one question
type BatchResult struct {
	Index    int
	Question string
	Report   *model.Report
	Error    error
}

// BatchProcessor builds reports for many questions concurrently
type BatchProcessor struct {
	builder     Builder
	concurrency int
	intent      model.Intent
	mode        model.PrecisionMode
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(builder Builder, concurrency int, intent model.Intent, mode model.PrecisionMode) *BatchProcessor {
	return &BatchProcessor{
		builder:     builder,
		concurrency: concurrency,
		intent:      intent,
		mode:        mode,
	}
}

// ProcessQuestions builds every question and returns the results in input
// order. Questions that never ran because ctx ended carry ctx's error.
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*BatchResult {
	results := make([]*BatchResult, len(questions))
	if len(questions) == 0 {
		return results
	}

	pool := worker.NewPool[*BatchResult](ctx, b.concurrency)
	pool.Start()

	for i, q := range questions {
		if !pool.Submit(&QuestionJob{
			Index:    i,
			Question: q,
			Intent:   b.intent,
			Mode:     b.mode,
			Builder:  b.builder,
		}) {
			break
		}
	}

	for _, r := range pool.Wait() {
		results[r.Index] = r
	}

	for i, r := range results {
		if r != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = errors.New("question was not processed")
		}
		results[i] = &BatchResult{Index: i, Question: questions[i], Error: err}
	}
	return results
}

// ProcessFile reads questions from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*BatchResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "read questions")
	}

	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads questions from a file, one per line. Blank
// lines, lines starting with # and repeated questions are skipped.
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan file")
	}

	return questions, nil
}

// Summary counts successes and failures
func Summary(results []*BatchResult) (ok, failed int) {
	for _, r := range results {
		if r.Error != nil {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}
