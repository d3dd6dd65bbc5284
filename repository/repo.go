package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"academy-scheduler/constant"
	"academy-scheduler/entities"
)

type SessionRepository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB
	FindSessionById(ctx context.Context, id uuid.UUID) (*entities.Session, error)
	FindSessionByRoomName(ctx context.Context, roomName string) (*entities.Session, error)
	FindSuccessor(ctx context.Context, precedingId uuid.UUID) (*entities.Session, error)
	CreateSuccessor(ctx context.Context, session *entities.Session) (bool, error)
	MarkSessionLive(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkSessionEnded(ctx context.Context, id uuid.UUID, at time.Time) error
	FindScheduledBetween(ctx context.Context, from, to time.Time) ([]*entities.Session, error)
	FindEndedWithoutRecording(ctx context.Context, limit int) ([]*entities.Session, error)
	MarkReminderDispatched(ctx context.Context, sessionId uuid.UUID, window constant.WindowKind) (bool, error)
	ListActiveEnrollments(ctx context.Context, courseId uuid.UUID) ([]*entities.Enrollment, error)
	FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error)
	UpdateSessionRecording(ctx context.Context, id uuid.UUID, url string, durationSeconds int, objectName string) error
	UpdateSessionSummary(ctx context.Context, id uuid.UUID, summary, keyPoints, topicsCovered string) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) SessionRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.GetDB().Transaction(func(tx *gorm.DB) error {
		return callback(ctx)
	}, opts...)
}

func (r *repo) FindSessionById(ctx context.Context, id uuid.UUID) (*entities.Session, error) {
	session := &entities.Session{}
	err := r.GetDB().WithContext(ctx).First(session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (r *repo) FindSessionByRoomName(ctx context.Context, roomName string) (*entities.Session, error) {
	session := &entities.Session{}
	err := r.GetDB().WithContext(ctx).First(session, "meeting_room_name = ?", roomName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (r *repo) FindSuccessor(ctx context.Context, precedingId uuid.UUID) (*entities.Session, error) {
	session := &entities.Session{}
	err := r.GetDB().WithContext(ctx).First(session, "preceding_session_id = ?", precedingId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// CreateSuccessor inserts the successor session, relying on the unique index
// on preceding_session_id to swallow concurrent duplicates. Returns false when
// another invocation already created the successor.
func (r *repo) CreateSuccessor(ctx context.Context, session *entities.Session) (bool, error) {
	result := r.GetDB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "preceding_session_id"}},
			DoNothing: true,
		}).
		Create(session)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *repo) MarkSessionLive(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Session{}).
		Where("id = ? AND status = ?", id, constant.SessionStatusScheduled).
		Updates(map[string]interface{}{
			"status":     constant.SessionStatusLive,
			"started_at": at,
		}).Error
}

func (r *repo) MarkSessionEnded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Session{}).
		Where("id = ? AND status <> ?", id, constant.SessionStatusEnded).
		Updates(map[string]interface{}{
			"status":   constant.SessionStatusEnded,
			"ended_at": at,
		}).Error
}

func (r *repo) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]*entities.Session, error) {
	var sessions []*entities.Session
	err := r.GetDB().WithContext(ctx).
		Where("status = ? AND scheduled_at BETWEEN ? AND ?", constant.SessionStatusScheduled, from, to).
		Order("scheduled_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *repo) FindEndedWithoutRecording(ctx context.Context, limit int) ([]*entities.Session, error) {
	var sessions []*entities.Session
	err := r.GetDB().WithContext(ctx).
		Where("status = ? AND recording_url IS NULL AND meeting_room_name <> ''", constant.SessionStatusEnded).
		Order("ended_at ASC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// MarkReminderDispatched claims the (session, window) pair. Returns false when
// a previous or concurrent scan already owns it.
func (r *repo) MarkReminderDispatched(ctx context.Context, sessionId uuid.UUID, window constant.WindowKind) (bool, error) {
	dispatch := &entities.ReminderDispatch{
		SessionId:    sessionId,
		WindowKind:   window,
		DispatchedAt: time.Now().UTC(),
	}
	result := r.GetDB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "window_kind"}},
			DoNothing: true,
		}).
		Create(dispatch)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *repo) ListActiveEnrollments(ctx context.Context, courseId uuid.UUID) ([]*entities.Enrollment, error) {
	var enrollments []*entities.Enrollment
	err := r.GetDB().WithContext(ctx).
		Where("course_id = ? AND status = ?", courseId, constant.EnrollmentStatusActive).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *repo) FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user := &entities.User{}
	err := r.GetDB().WithContext(ctx).First(user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *repo) UpdateSessionRecording(ctx context.Context, id uuid.UUID, url string, durationSeconds int, objectName string) error {
	updates := map[string]interface{}{
		"recording_url":              url,
		"recording_duration_seconds": durationSeconds,
	}
	if objectName != "" {
		updates["recording_object_name"] = objectName
	}
	return r.GetDB().WithContext(ctx).Model(&entities.Session{}).
		Where("id = ? AND recording_url IS NULL", id).
		Updates(updates).Error
}

func (r *repo) UpdateSessionSummary(ctx context.Context, id uuid.UUID, summary, keyPoints, topicsCovered string) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"summary":        summary,
			"key_points":     keyPoints,
			"topics_covered": topicsCovered,
		}).Error
}
