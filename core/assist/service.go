package assist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/quiz"
)

var (
	// errors
	ErrUnavailable = errors.New("assistant unavailable")
)

const maxContentLen = 4000 // prompt content is truncated beyond this

type (
	// Generator produces a completion for a system/user prompt pair.
	Generator interface {
		Complete(ctx context.Context, system, prompt string) (string, error)
	}

	// Cache memoizes completions; implementations may no-op.
	Cache interface {
		GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (string, error)) (string, error)
	}

	Service struct {
		gen     Generator
		cache   Cache
		limiter *rate.Limiter
		ttl     time.Duration
	}
)

func NewService(gen Generator, cache Cache, conf *core.Config) *Service {
	rpm := conf.Assist.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}
	return &Service{
		gen:     gen,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		ttl:     conf.Assist.CacheTTL,
	}
}

// GenerateContent produces learning content for a topic at a difficulty level.
func (svc *Service) GenerateContent(ctx context.Context, req ContentRequest) (string, error) {
	prompt := fmt.Sprintf(
		"Create comprehensive learning content about %s at %s level. "+
			"Include explanations, examples, and practice questions.",
		req.Topic, req.Difficulty,
	)
	return svc.complete(ctx, "You are an educational content creator.", prompt)
}

// CourseOutline produces a structured outline for a course.
func (svc *Service) CourseOutline(ctx context.Context, req OutlineRequest) (string, error) {
	prompt := fmt.Sprintf(
		"Create a detailed course outline for a course with the following details:\n"+
			"Title: %s\nDescription: %s\n\n"+
			"The outline should include:\n"+
			"1. Learning objectives\n"+
			"2. Main topics (5-8)\n"+
			"3. Subtopics for each main topic\n"+
			"4. Suggested time allocation\n"+
			"5. Recommended quiz points\n\n"+
			"Format the response as a JSON object.",
		req.Title, req.Description,
	)
	return svc.complete(ctx, "You are an expert curriculum designer.", prompt)
}

// QuizQuestions produces multiple-choice questions for given content.
func (svc *Service) QuizQuestions(ctx context.Context, req QuizQuestionsRequest) (string, error) {
	content := req.Content
	if len(content) > maxContentLen {
		content = content[:maxContentLen]
	}
	prompt := fmt.Sprintf(
		"Generate %d quiz questions based on the following topic and content:\n"+
			"Topic: %s\nContent: %s\n\n"+
			"For each question, provide:\n"+
			"1. Question text\n"+
			"2. Multiple choice options (4 options)\n"+
			"3. Correct answer\n"+
			"4. Explanation\n\n"+
			"Format the response as a JSON array of question objects.",
		req.NumQuestions, req.Topic, content,
	)
	return svc.complete(ctx, "You are an expert assessment creator.", prompt)
}

// Recommendations produces personalized learning recommendations from a
// student's submissions in a course.
func (svc *Service) Recommendations(ctx context.Context, courseTitle string, subs []quiz.Submission) (string, error) {
	prompt := fmt.Sprintf(
		"Based on the student's quiz submissions and course materials, provide "+
			"personalized learning recommendations. Course: %s, Submissions: %s",
		courseTitle, summarizeSubmissions(subs),
	)
	return svc.complete(ctx, "You are an educational assistant providing personalized learning recommendations.", prompt)
}

// AnalyzePerformance produces a strengths/weaknesses analysis from a
// student's submissions in a course.
func (svc *Service) AnalyzePerformance(ctx context.Context, courseTitle string, subs []quiz.Submission) (string, error) {
	prompt := fmt.Sprintf(
		"Analyze the student's performance in %s based on their quiz submissions: %s. "+
			"Provide insights on strengths, weaknesses, and improvement areas.",
		courseTitle, summarizeSubmissions(subs),
	)
	return svc.complete(ctx, "You are an educational analyst.", prompt)
}

func (svc *Service) complete(ctx context.Context, system, prompt string) (string, error) {
	key := cacheKey(system, prompt)
	return svc.cache.GetOrSet(ctx, key, svc.ttl, func() (string, error) {
		if err := svc.limiter.Wait(ctx); err != nil {
			return "", errors.Wrap(err, "waiting for rate limiter")
		}
		out, err := svc.gen.Complete(ctx, system, prompt)
		if err != nil {
			return "", errors.Wrap(ErrUnavailable, err.Error())
		}
		return out, nil
	})
}

func summarizeSubmissions(subs []quiz.Submission) string {
	if len(subs) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(subs))
	for _, sub := range subs {
		parts = append(parts, fmt.Sprintf("quiz %s: %.0f/%.0f", sub.QuizID, sub.Score, sub.MaxScore))
	}
	return strings.Join(parts, "; ")
}

func cacheKey(system, prompt string) string {
	sum := sha256.Sum256([]byte(system + "\x00" + prompt))
	return "assist:" + hex.EncodeToString(sum[:])
}
