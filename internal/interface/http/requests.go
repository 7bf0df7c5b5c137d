package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/course-schedule/internal/application/command"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST BODIES
// ══════════════════════════════════════════════════════════════════════════════

var validate = validator.New()

type copyScheduleRequest struct {
	FromCourseID int64 `json:"fromCourseId" validate:"required,gt=0"`
}

// courseTaskRequest is the body of task create and update calls. On update
// a missing courseId keeps the task in its current course.
type courseTaskRequest struct {
	CourseID int64  `json:"courseId" validate:"omitempty,gt=0"`
	TaskID   int64  `json:"taskId" validate:"required,gt=0"`
	Type     string `json:"type" validate:"omitempty,max=64"`
	Checker  string `json:"checker" validate:"omitempty,oneof=auto-test mentor assigned taskOwner crossCheck"`

	StudentStartDate  *time.Time `json:"studentStartDate"`
	StudentEndDate    *time.Time `json:"studentEndDate"`
	MentorStartDate   *time.Time `json:"mentorStartDate"`
	MentorEndDate     *time.Time `json:"mentorEndDate"`
	CrossCheckEndDate *time.Time `json:"crossCheckEndDate"`

	MaxScore    *int     `json:"maxScore" validate:"omitempty,gte=0"`
	ScoreWeight *float64 `json:"scoreWeight" validate:"omitempty,gte=0"`
	PairsCount  *int     `json:"pairsCount" validate:"omitempty,gte=0"`
	TaskOwnerID *int64   `json:"taskOwnerId" validate:"omitempty,gt=0"`
}

func (req courseTaskRequest) toInput(courseID int64) command.CourseTaskInput {
	return command.CourseTaskInput{
		CourseID:          courseID,
		TaskID:            req.TaskID,
		Type:              req.Type,
		Checker:           req.Checker,
		StudentStartDate:  req.StudentStartDate,
		StudentEndDate:    req.StudentEndDate,
		MentorStartDate:   req.MentorStartDate,
		MentorEndDate:     req.MentorEndDate,
		CrossCheckEndDate: req.CrossCheckEndDate,
		MaxScore:          req.MaxScore,
		ScoreWeight:       req.ScoreWeight,
		PairsCount:        req.PairsCount,
		TaskOwnerID:       req.TaskOwnerID,
	}
}

type certificateTarget struct {
	StudentID int64 `json:"studentId" validate:"required,gt=0"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DECODING
// ══════════════════════════════════════════════════════════════════════════════

// decodeJSON reads the body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return shared.WrapError("http", "Decode", shared.ErrInvalidFormat, "malformed JSON body", err)
	}
	return nil
}

// validateBody runs struct validation; slices are validated element-wise.
func validateBody(v any) error {
	if err := validate.Struct(v); err != nil {
		return shared.WrapError("http", "Validate", shared.ErrValidation, "invalid request body", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PATH & QUERY PARAMETERS
// ══════════════════════════════════════════════════════════════════════════════

func pathID(r *http.Request, name string) (int64, error) {
	return shared.ParseID(r.PathValue(name))
}

// optionalID parses an optional positive id from the query string.
func optionalID(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := shared.ParseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// queryInt parses an integer query parameter, returning def when absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.WrapError("http", "Query", shared.ErrInvalidFormat, key+" must be an integer", err)
	}
	return v, nil
}
