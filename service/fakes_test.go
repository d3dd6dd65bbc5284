package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"academy-scheduler/constant"
	"academy-scheduler/dto"
	"academy-scheduler/entities"
	"academy-scheduler/pkg/push"
	"academy-scheduler/pkg/video"
)

type fakeRepo struct {
	sessions    map[uuid.UUID]*entities.Session
	enrollments map[uuid.UUID][]*entities.Enrollment
	users       map[uuid.UUID]*entities.User
	dispatches  map[string]bool

	summaries map[uuid.UUID][3]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions:    map[uuid.UUID]*entities.Session{},
		enrollments: map[uuid.UUID][]*entities.Enrollment{},
		users:       map[uuid.UUID]*entities.User{},
		dispatches:  map[string]bool{},
		summaries:   map[uuid.UUID][3]string{},
	}
}

func (r *fakeRepo) addSession(s *entities.Session) {
	r.sessions[s.ID] = s
}

func (r *fakeRepo) enroll(courseId uuid.UUID, userIds ...uuid.UUID) {
	for _, id := range userIds {
		r.enrollments[courseId] = append(r.enrollments[courseId], &entities.Enrollment{
			ID:       uuid.New(),
			UserId:   id,
			CourseId: courseId,
			Status:   constant.EnrollmentStatusActive,
		})
	}
}

func (r *fakeRepo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return callback(ctx)
}

func (r *fakeRepo) GetDB() *gorm.DB {
	return nil
}

func (r *fakeRepo) FindSessionById(ctx context.Context, id uuid.UUID) (*entities.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeRepo) FindSessionByRoomName(ctx context.Context, roomName string) (*entities.Session, error) {
	for _, s := range r.sessions {
		if s.MeetingRoomName == roomName {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindSuccessor(ctx context.Context, precedingId uuid.UUID) (*entities.Session, error) {
	for _, s := range r.sessions {
		if s.PrecedingSessionId != nil && *s.PrecedingSessionId == precedingId {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) CreateSuccessor(ctx context.Context, session *entities.Session) (bool, error) {
	if session.PrecedingSessionId != nil {
		if existing, _ := r.FindSuccessor(ctx, *session.PrecedingSessionId); existing != nil {
			return false, nil
		}
	}
	r.sessions[session.ID] = session
	return true, nil
}

func (r *fakeRepo) MarkSessionLive(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s, ok := r.sessions[id]; ok && s.Status == constant.SessionStatusScheduled {
		s.Status = constant.SessionStatusLive
		s.StartedAt = &at
	}
	return nil
}

func (r *fakeRepo) MarkSessionEnded(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s, ok := r.sessions[id]; ok && s.Status != constant.SessionStatusEnded {
		s.Status = constant.SessionStatusEnded
		s.EndedAt = &at
	}
	return nil
}

func (r *fakeRepo) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]*entities.Session, error) {
	var out []*entities.Session
	for _, s := range r.sessions {
		if s.Status != constant.SessionStatusScheduled || s.ScheduledAt == nil {
			continue
		}
		at := *s.ScheduledAt
		if !at.Before(from) && !at.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindEndedWithoutRecording(ctx context.Context, limit int) ([]*entities.Session, error) {
	var out []*entities.Session
	for _, s := range r.sessions {
		if s.Status == constant.SessionStatusEnded && s.RecordingUrl == nil && s.MeetingRoomName != "" {
			out = append(out, s)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkReminderDispatched(ctx context.Context, sessionId uuid.UUID, window constant.WindowKind) (bool, error) {
	key := sessionId.String() + "|" + window.String()
	if r.dispatches[key] {
		return false, nil
	}
	r.dispatches[key] = true
	return true, nil
}

func (r *fakeRepo) ListActiveEnrollments(ctx context.Context, courseId uuid.UUID) ([]*entities.Enrollment, error) {
	return r.enrollments[courseId], nil
}

func (r *fakeRepo) FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeRepo) UpdateSessionRecording(ctx context.Context, id uuid.UUID, url string, durationSeconds int, objectName string) error {
	s, ok := r.sessions[id]
	if !ok || s.RecordingUrl != nil {
		return nil
	}
	s.RecordingUrl = &url
	s.RecordingDurationSeconds = &durationSeconds
	if objectName != "" {
		s.RecordingObjectName = &objectName
	}
	return nil
}

func (r *fakeRepo) UpdateSessionSummary(ctx context.Context, id uuid.UUID, summary, keyPoints, topicsCovered string) error {
	r.summaries[id] = [3]string{summary, keyPoints, topicsCovered}
	return nil
}

type fakePublisher struct {
	published []dto.NotificationMessage
	err       error
}

func (p *fakePublisher) PublishNotification(ctx context.Context, msg dto.NotificationMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

type fakeVideo struct {
	createErr     error
	createdRooms  []string
	recordings    map[string][]video.Recording
	listErr       error
	transcript    string
	transcriptErr error
}

func (v *fakeVideo) CreateRoom(ctx context.Context, name string, expiry time.Time) (*video.Room, error) {
	if v.createErr != nil {
		return nil, v.createErr
	}
	v.createdRooms = append(v.createdRooms, name)
	return &video.Room{Name: name, Url: "https://rooms.example/" + name}, nil
}

func (v *fakeVideo) ListRecordings(ctx context.Context, roomName string) ([]video.Recording, error) {
	if v.listErr != nil {
		return nil, v.listErr
	}
	return v.recordings[roomName], nil
}

func (v *fakeVideo) GetRecording(ctx context.Context, id string) (*video.Recording, error) {
	for _, recs := range v.recordings {
		for i := range recs {
			if recs[i].Id == id {
				return &recs[i], nil
			}
		}
	}
	return nil, nil
}

func (v *fakeVideo) GetTranscript(ctx context.Context, recordingId string) (string, error) {
	return v.transcript, v.transcriptErr
}

type fakePush struct {
	err      error
	failFor  map[uuid.UUID]bool
	batches  [][]uuid.UUID
}

func (p *fakePush) Send(ctx context.Context, userIds []uuid.UUID, n push.Notification) ([]push.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.batches = append(p.batches, userIds)
	results := make([]push.Result, 0, len(userIds))
	for _, id := range userIds {
		r := push.Result{UserId: id}
		if p.failFor[id] {
			r.Err = context.DeadlineExceeded
		}
		results = append(results, r)
	}
	return results, nil
}

type sentEmail struct {
	to      string
	toName  string
	subject string
	html    string
}

type fakeEmail struct {
	sent    []sentEmail
	failFor map[string]bool
}

func (e *fakeEmail) Send(ctx context.Context, to, toName, subject, html string) error {
	if e.failFor[to] {
		return context.DeadlineExceeded
	}
	e.sent = append(e.sent, sentEmail{to: to, toName: toName, subject: subject, html: html})
	return nil
}

type fakeLLM struct {
	response string
	err      error
}

func (l *fakeLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return l.response, l.err
}

type fakeArchiver struct {
	objectName string
	err        error
	calls      int
}

func (a *fakeArchiver) Archive(ctx context.Context, sessionId uuid.UUID, downloadUrl string) (string, error) {
	a.calls++
	if a.err != nil {
		return "", a.err
	}
	if a.objectName != "" {
		return a.objectName, nil
	}
	return "recordings/" + sessionId.String() + "/recording.mp4", nil
}
