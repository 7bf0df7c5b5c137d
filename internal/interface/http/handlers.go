package http

import (
	"net/http"

	"github.com/alem-hub/course-schedule/internal/application/command"
	"github.com/alem-hub/course-schedule/internal/application/query"
	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		s.write(w, http.StatusServiceUnavailable, JSONResponse{Data: status, Meta: s.meta(r)})
		return
	}
	s.writeJSON(w, r, http.StatusOK, status)
}

// handleReady handles the readiness probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		s.writeJSONError(w, r, http.StatusServiceUnavailable, "not_ready", status.Message)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetSchedule handles GET /api/v1/courses/{courseId}/schedule
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetSchedule == nil {
		s.notConfigured(w, r)
		return
	}
	courseID, err := pathID(r, "courseId")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	studentID, err := optionalID(r, "studentId")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	items, err := s.deps.GetSchedule.Handle(r.Context(), query.GetScheduleQuery{CourseID: courseID, StudentID: studentID})
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	s.writeList(w, r, items, len(items))
}

// handleCopySchedule handles POST /api/v1/courses/{courseId}/schedule/copy
func (s *Server) handleCopySchedule(w http.ResponseWriter, r *http.Request) {
	if s.deps.CopySchedule == nil {
		s.notConfigured(w, r)
		return
	}
	toCourseID, err := pathID(r, "courseId")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	var req copyScheduleRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	if err := validateBody(req); err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	result, err := s.deps.CopySchedule.Handle(r.Context(), command.CopyScheduleCommand{
		FromCourseID: req.FromCourseID,
		ToCourseID:   toCourseID,
	})
	if err != nil {
		// Partial counts are returned with the error.
		var data any
		if result != nil {
			data = result
		}
		s.writeDomainError(w, r, err, data)
		return
	}

	logger.FromContext(r.Context()).Info("schedule copied",
		logger.CourseID(toCourseID),
		logger.Any("from_course_id", req.FromCourseID),
		logger.Int("tasks", result.TasksCopied),
		logger.Int("events", result.EventsCopied),
	)
	s.writeJSON(w, r, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE TASK HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListCourseTasks handles GET /api/v1/courses/{courseId}/tasks
func (s *Server) handleListCourseTasks(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListCourseTasks == nil {
		s.notConfigured(w, r)
		return
	}
	courseID, err := pathID(r, "courseId")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	tasks, err := s.deps.ListCourseTasks.Handle(r.Context(), query.ListCourseTasksQuery{
		CourseID: courseID,
		Status:   r.URL.Query().Get("status"),
	})
	s.respondTasks(w, r, tasks, err)
}

// handleGetUpdatedTasks handles GET /api/v1/courses/{courseId}/tasks/updated
func (s *Server) handleGetUpdatedTasks(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetUpdatedTasks == nil {
		s.notConfigured(w, r)
		return
	}
	courseID, err := pathID(r, "courseId")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	lastHours, err := queryInt(r, "lastHours", 0)
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	tasks, err := s.deps.GetUpdatedTasks.Handle(r.Context(), query.GetUpdatedTasksQuery{
		CourseID:  courseID,
		LastHours: lastHours,
	})
	s.respondTasks(w, r, tasks, err)
}

// handleGetPendingDeadline handles GET /api/v1/courses/{courseId}/tasks/pending-deadline
func (s *Server) handleGetPendingDeadline(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetPendingDeadline == nil {
		s.notConfigured(w, r)
		return
	}
	courseID, err := pathID(r, "courseId")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	hours, err := queryInt(r, "hours", query.DefaultDeadlineWithinHours)
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	tasks, err := s.deps.GetPendingDeadline.Handle(r.Context(), query.GetPendingDeadlineQuery{
		CourseID:            courseID,
		DeadlineWithinHours: hours,
	})
	s.respondTasks(w, r, tasks, err)
}

// handleCreateCourseTask handles POST /api/v1/courses/{courseId}/tasks
func (s *Server) handleCreateCourseTask(w http.ResponseWriter, r *http.Request) {
	if s.deps.SaveCourseTask == nil {
		s.notConfigured(w, r)
		return
	}
	courseID, err := pathID(r, "courseId")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	var req courseTaskRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	if err := validateBody(req); err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	ct, err := s.deps.SaveCourseTask.Create(r.Context(), req.toInput(courseID))
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, ct)
}

// handleGetCourseTask handles GET /api/v1/course-tasks/{id}
func (s *Server) handleGetCourseTask(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetCourseTask == nil {
		s.notConfigured(w, r)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	ct, err := s.deps.GetCourseTask.Handle(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	s.writeJSON(w, r, http.StatusOK, ct)
}

// handleUpdateCourseTask handles PUT /api/v1/course-tasks/{id}
func (s *Server) handleUpdateCourseTask(w http.ResponseWriter, r *http.Request) {
	if s.deps.SaveCourseTask == nil || s.deps.GetCourseTask == nil {
		s.notConfigured(w, r)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	var req courseTaskRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	if err := validateBody(req); err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	courseID := req.CourseID
	if courseID == 0 {
		current, err := s.deps.GetCourseTask.Handle(r.Context(), id)
		if err != nil {
			s.writeDomainError(w, r, err, nil)
			return
		}
		courseID = current.CourseID
	}

	ct, err := s.deps.SaveCourseTask.Update(r.Context(), id, req.toInput(courseID))
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	s.writeJSON(w, r, http.StatusOK, ct)
}

// handleDisableCourseTask handles DELETE /api/v1/course-tasks/{id}
func (s *Server) handleDisableCourseTask(w http.ResponseWriter, r *http.Request) {
	if s.deps.DisableCourseTask == nil {
		s.notConfigured(w, r)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	if err := s.deps.DisableCourseTask.Handle(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	logger.FromContext(r.Context()).Info("course task disabled", logger.CourseTaskID(id))
	s.writeJSON(w, r, http.StatusOK, map[string]any{"id": id, "disabled": true})
}

// handleGetTasksByOwner handles GET /api/v1/course-tasks/owner/{githubId}
func (s *Server) handleGetTasksByOwner(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetTasksByOwner == nil {
		s.notConfigured(w, r)
		return
	}
	tasks, err := s.deps.GetTasksByOwner.Handle(r.Context(), r.PathValue("githubId"))
	s.respondTasks(w, r, tasks, err)
}

func (s *Server) respondTasks(w http.ResponseWriter, r *http.Request, tasks []course.CourseTask, err error) {
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	s.writeList(w, r, tasks, len(tasks))
}

// ══════════════════════════════════════════════════════════════════════════════
// CERTIFICATE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGenerateCertificates handles POST /api/v1/courses/{courseId}/certificates
// An empty body or empty list certifies every eligible student.
func (s *Server) handleGenerateCertificates(w http.ResponseWriter, r *http.Request) {
	if s.deps.GenerateCertificates == nil {
		s.notConfigured(w, r)
		return
	}
	courseID, err := pathID(r, "courseId")
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}
	var targets []certificateTarget
	if err := decodeJSON(r, &targets, true); err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	ids := make([]int64, 0, len(targets))
	for _, t := range targets {
		if err := validateBody(t); err != nil {
			s.writeDomainError(w, r, err, nil)
			return
		}
		ids = append(ids, t.StudentID)
	}

	result, err := s.deps.GenerateCertificates.Handle(r.Context(), command.GenerateCertificatesCommand{
		CourseID:   courseID,
		StudentIDs: ids,
	})
	if err != nil {
		s.writeDomainError(w, r, err, nil)
		return
	}

	logger.FromContext(r.Context()).Info("certificates requested",
		logger.CourseID(courseID),
		logger.Int("count", len(result.Certificates)),
		logger.String("archive_key", result.ArchiveKey),
	)
	s.writeJSON(w, r, http.StatusOK, result)
}
