package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

func TestResolveScore_Priority(t *testing.T) {
	results := []course.TaskResult{{CourseTaskID: 1, Score: 5}}
	interviews := []course.TaskInterviewResult{{CourseTaskID: 1, Score: score(9)}}
	stages := []course.StageInterview{{CourseTaskID: 1, Feedbacks: []course.StageInterviewFeedback{{JSON: `{"resume":{"score":7}}`}}}}

	got := ResolveScore(1, results, interviews, stages)
	require.NotNil(t, got)
	assert.Equal(t, 5.0, *got)

	got = ResolveScore(1, nil, interviews, stages)
	require.NotNil(t, got)
	assert.Equal(t, 9.0, *got)

	got = ResolveScore(1, nil, nil, stages)
	require.NotNil(t, got)
	assert.Equal(t, 7.0, *got)
}

func TestResolveScore_InterviewWithoutScoreFallsThrough(t *testing.T) {
	interviews := []course.TaskInterviewResult{{CourseTaskID: 1}}
	stages := []course.StageInterview{{CourseTaskID: 1, Feedbacks: []course.StageInterviewFeedback{{JSON: `{"resume":{"score":4}}`}}}}

	got := ResolveScore(1, nil, interviews, stages)
	require.NotNil(t, got)
	assert.Equal(t, 4.0, *got)
}

func TestResolveScore_StageInterviewFeedback(t *testing.T) {
	tests := []struct {
		name      string
		feedbacks []string
		want      *float64
	}{
		{"max of scores", []string{`{"resume":{"score":3}}`, `{"resume":{"score":8.5}}`}, score(8.5)},
		{"missing score counts as zero", []string{`{"resume":{}}`, `{"other":1}`}, score(0)},
		{"non-numeric score counts as zero", []string{`{"resume":{"score":"high"}}`}, score(0)},
		{"negative vs missing", []string{`{"resume":{"score":-2}}`, `{}`}, score(0)},
		{"unparseable skipped", []string{`{not json`, `{"resume":{"score":6}}`}, score(6)},
		{"only unparseable", []string{`{not json`}, nil},
		{"empty feedback set", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fbs := make([]course.StageInterviewFeedback, 0, len(tt.feedbacks))
			for _, raw := range tt.feedbacks {
				fbs = append(fbs, course.StageInterviewFeedback{JSON: raw})
			}
			stages := []course.StageInterview{{CourseTaskID: 2, Feedbacks: fbs}}

			got := ResolveScore(2, nil, nil, stages)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestResolveScore_NoSources(t *testing.T) {
	results := []course.TaskResult{{CourseTaskID: 7, Score: 1}}
	assert.Nil(t, ResolveScore(1, results, nil, nil))
	assert.Nil(t, ResolveScore(1, nil, nil, nil))
}

func TestParseFeedbackResume(t *testing.T) {
	resume, err := ParseFeedbackResume(`{"resume":{"score":42}}`)
	require.NoError(t, err)
	require.NotNil(t, resume.Score)
	assert.Equal(t, 42.0, *resume.Score)

	resume, err = ParseFeedbackResume(`[1,2]`)
	require.NoError(t, err)
	assert.Nil(t, resume.Score)

	_, err = ParseFeedbackResume(`{`)
	assert.Error(t, err)
}
