package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ProgressRecord describes one stored progress blob.
type ProgressRecord struct {
	CourseID  string
	Size      int
	UpdatedAt time.Time
}

// ProgressRepo stores one opaque progress blob per course.
type ProgressRepo interface {
	// Get returns the blob for a course, or ErrNotFound.
	Get(ctx context.Context, courseID string) ([]byte, error)

	// Put replaces the blob for a course.
	Put(ctx context.Context, courseID string, data []byte) error

	// Delete removes the blob for a course. Deleting a missing blob is not
	// an error.
	Delete(ctx context.Context, courseID string) error

	// List returns every stored course, most recently updated first.
	List(ctx context.Context) ([]ProgressRecord, error)
}

// SessionEventData captures a session start or end.
type SessionEventData struct {
	SessionID    string
	CourseID     string
	Action       string // "start" or "end"
	Mode         string
	LinesStudied int
	CorrectMoves int
	Mistakes     int
	Hints        int
	DurationSecs int
}

// SessionSummaryRecord is a completed session read back for history views.
type SessionSummaryRecord struct {
	SessionID    string
	CourseID     string
	Timestamp    time.Time
	Mode         string
	LinesStudied int
	CorrectMoves int
	Mistakes     int
	Hints        int
	DurationSecs int
}

// ReviewEventData captures one attempt at a line and the resulting card.
type ReviewEventData struct {
	SessionID    string
	CourseID     string
	LineID       string
	Mode         string
	Outcome      string
	Mistakes     int
	Hints        int
	HintStage    int
	IntervalDays int
	EaseFactor   float64
	NextReviewAt time.Time
}

// ReviewEventRecord is a stored review event.
type ReviewEventRecord struct {
	ReviewEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// HintEventData captures a hint shown to the learner.
type HintEventData struct {
	SessionID    string
	CourseID     string
	LineID       string
	Mode         string
	Ply          int
	ExpectedMove string
	// Revealed is the from and to squares shown to the learner, e.g. "g1f3".
	Revealed     string
	HintStage    int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorKind    string
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendReviewEvent(ctx context.Context, data ReviewEventData) error
	AppendHintEvent(ctx context.Context, data HintEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QuerySessionSummaries returns ended sessions, newest first.
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error)

	// QueryReviewEvents returns a course's review events, newest first.
	QueryReviewEvents(ctx context.Context, courseID string, opts QueryOpts) ([]ReviewEventRecord, error)

	// LineAccuracy returns the share of attempts at a line that finished
	// without mistakes, and the number of attempts.
	LineAccuracy(ctx context.Context, courseID, lineID string) (float64, int, error)

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
