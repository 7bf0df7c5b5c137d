package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE CERTIFICATES COMMAND
// Builds certificate records for the selected students (or every student who
// finished the course) and submits them to the certificate generation service.
// ══════════════════════════════════════════════════════════════════════════════

// CertificateIssuer submits certificate records to the generation service.
type CertificateIssuer interface {
	Issue(ctx context.Context, certificates []course.Certificate) error
}

// CertificateArchive keeps a copy of every submitted batch.
type CertificateArchive interface {
	// Store saves the batch and returns the object key.
	Store(ctx context.Context, courseID int64, certificates []course.Certificate) (string, error)
}

// GenerateCertificatesCommand selects the students to certify.
type GenerateCertificatesCommand struct {
	CourseID int64

	// StudentIDs limits the batch. Empty means every student of the course
	// who is neither expelled nor failed.
	StudentIDs []int64
}

// Validate validates the command.
func (c GenerateCertificatesCommand) Validate() error {
	if c.CourseID <= 0 {
		return shared.ErrInvalidCourseID
	}
	for _, id := range c.StudentIDs {
		if id <= 0 {
			return shared.ErrInvalidStudentID
		}
	}
	return nil
}

// GenerateCertificatesResult contains the submitted batch.
type GenerateCertificatesResult struct {
	Certificates []course.Certificate `json:"certificates"`

	// ArchiveKey is empty when archiving is disabled or failed.
	ArchiveKey string `json:"archiveKey,omitempty"`
}

// GenerateCertificatesHandler handles certificate generation.
type GenerateCertificatesHandler struct {
	students course.StudentRepository
	issuer   CertificateIssuer
	archive  CertificateArchive
	clock    timeutil.Clock
	logger   *slog.Logger
}

// NewGenerateCertificatesHandler creates a new handler. archive may be nil.
func NewGenerateCertificatesHandler(
	students course.StudentRepository,
	issuer CertificateIssuer,
	archive CertificateArchive,
	clock timeutil.Clock,
	logger *slog.Logger,
) *GenerateCertificatesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateCertificatesHandler{
		students: students,
		issuer:   issuer,
		archive:  archive,
		clock:    timeutil.OrSystem(clock),
		logger:   logger,
	}
}

// Handle executes the command.
func (h *GenerateCertificatesHandler) Handle(ctx context.Context, cmd GenerateCertificatesCommand) (*GenerateCertificatesResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var (
		students []course.Student
		err      error
	)
	if len(cmd.StudentIDs) > 0 {
		students, err = h.students.FindByIDs(ctx, cmd.StudentIDs)
	} else {
		students, err = h.students.FindCertifiable(ctx, cmd.CourseID)
	}
	if err != nil {
		return nil, fmt.Errorf("find students of course %d: %w", cmd.CourseID, err)
	}
	if len(students) == 0 {
		return nil, shared.ErrNoCertificateTargets
	}

	issuedAt := h.clock.Now()
	certificates := make([]course.Certificate, 0, len(students))
	for _, s := range students {
		certificates = append(certificates, course.NewCertificate(s, issuedAt))
	}

	if err := h.issuer.Issue(ctx, certificates); err != nil {
		return nil, fmt.Errorf("issue certificates: %w", err)
	}

	result := &GenerateCertificatesResult{Certificates: certificates}

	if h.archive != nil {
		key, err := h.archive.Store(ctx, cmd.CourseID, certificates)
		if err != nil {
			h.logger.Warn("failed to archive certificate batch",
				"course_id", cmd.CourseID,
				"count", len(certificates),
				"error", err,
			)
		} else {
			result.ArchiveKey = key
		}
	}

	h.logger.Info("certificates issued",
		"course_id", cmd.CourseID,
		"count", len(certificates),
	)
	return result, nil
}
