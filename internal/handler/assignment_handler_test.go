package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

type assignmentServiceMock struct {
	actor       models.Actor
	decision    string
	observation *string
	status      models.AssignmentStatus
	currentOnly bool
	teacherID   string
	classID     string
	err         error
}

func (m *assignmentServiceMock) Create(ctx context.Context, actor models.Actor, req models.CreateAssignmentRequest) (*models.AssignmentResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.AssignmentResult{
		Assignment: models.TeacherAssignment{ID: "assign-1", TeacherID: req.TeacherID, ClassID: req.ClassID, Status: models.AssignmentPending},
		Warning:    &models.ExtraHoursWarning{TeacherID: req.TeacherID, ExcessHours: 4},
	}, nil
}

func (m *assignmentServiceMock) Update(ctx context.Context, actor models.Actor, id string, req models.UpdateAssignmentRequest) (*models.TeacherAssignment, error) {
	return &models.TeacherAssignment{ID: id}, m.err
}

func (m *assignmentServiceMock) Accept(ctx context.Context, actor models.Actor, id string, observation *string) (*models.TeacherAssignment, error) {
	m.actor, m.decision, m.observation = actor, "accept", observation
	if m.err != nil {
		return nil, m.err
	}
	return &models.TeacherAssignment{ID: id, Status: models.AssignmentAccepted}, nil
}

func (m *assignmentServiceMock) Reject(ctx context.Context, actor models.Actor, id string, observation *string) (*models.TeacherAssignment, error) {
	m.actor, m.decision, m.observation = actor, "reject", observation
	if m.err != nil {
		return nil, m.err
	}
	return &models.TeacherAssignment{ID: id, Status: models.AssignmentRejected}, nil
}

func (m *assignmentServiceMock) UpdateTeachingDates(ctx context.Context, actor models.Actor, id string, req models.TeachingDatesRequest) (*models.TeacherAssignment, error) {
	return &models.TeacherAssignment{ID: id, StartDate: req.StartDate, EndDate: req.EndDate}, m.err
}

func (m *assignmentServiceMock) Delete(ctx context.Context, actor models.Actor, id string) error {
	return m.err
}

func (m *assignmentServiceMock) DeleteByTeacherAndClass(ctx context.Context, actor models.Actor, teacherID, classID string) error {
	m.teacherID, m.classID = teacherID, classID
	return m.err
}

func (m *assignmentServiceMock) Get(ctx context.Context, actor models.Actor, id string) (*models.TeacherAssignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.TeacherAssignment{ID: id}, nil
}

func (m *assignmentServiceMock) ListForTeacher(ctx context.Context, actor models.Actor, teacherID string, currentOnly bool) ([]models.TeacherAssignment, error) {
	m.teacherID, m.currentOnly = teacherID, currentOnly
	return []models.TeacherAssignment{}, m.err
}

func (m *assignmentServiceMock) ListForClass(ctx context.Context, actor models.Actor, classID string) ([]models.TeacherAssignment, error) {
	m.classID = classID
	return []models.TeacherAssignment{}, m.err
}

func (m *assignmentServiceMock) ListByStatus(ctx context.Context, actor models.Actor, teacherID string, status models.AssignmentStatus) ([]models.TeacherAssignment, error) {
	m.teacherID, m.status = teacherID, status
	return []models.TeacherAssignment{}, m.err
}

func (m *assignmentServiceMock) ListCurrentSemester(ctx context.Context, actor models.Actor) ([]models.TeacherAssignment, error) {
	return []models.TeacherAssignment{}, m.err
}

func (m *assignmentServiceMock) ListPending(ctx context.Context, actor models.Actor) ([]models.TeacherAssignment, error) {
	return []models.TeacherAssignment{}, m.err
}

func TestAssignmentHandlerCreateIncludesWarning(t *testing.T) {
	handler := NewAssignmentHandler(&assignmentServiceMock{})
	c, w := newActorContext(t, http.MethodPost, "/assignments", models.CreateAssignmentRequest{TeacherID: "teacher-1", ClassID: "class-1", WorkHours: 6}, sectionActor())

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	warning := data["warning"].(map[string]interface{})
	assert.EqualValues(t, 4, warning["excess_hours"])
}

func TestAssignmentHandlerCreateDuplicateIsConflict(t *testing.T) {
	handler := NewAssignmentHandler(&assignmentServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "teacher already assigned to class")})
	c, w := newActorContext(t, http.MethodPost, "/assignments", models.CreateAssignmentRequest{TeacherID: "teacher-1", ClassID: "class-1"}, sectionActor())

	handler.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAssignmentHandlerAcceptWithoutBody(t *testing.T) {
	svc := &assignmentServiceMock{}
	handler := NewAssignmentHandler(svc)
	teacher := models.TeacherActor("teacher-1")
	c, w := newActorContext(t, http.MethodPatch, "/assignments/assign-1/accept", nil, &teacher)
	c.Params = gin.Params{{Key: "id", Value: "assign-1"}}

	handler.Accept(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accept", svc.decision)
	assert.Nil(t, svc.observation)
	assert.Equal(t, "teacher-1", svc.actor.TeacherID)
}

func TestAssignmentHandlerRejectWithObservation(t *testing.T) {
	svc := &assignmentServiceMock{}
	handler := NewAssignmentHandler(svc)
	teacher := models.TeacherActor("teacher-1")
	c, w := newActorContext(t, http.MethodPatch, "/assignments/assign-1/reject", `{"observation":"schedule clash"}`, &teacher)
	c.Params = gin.Params{{Key: "id", Value: "assign-1"}}

	handler.Reject(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reject", svc.decision)
	require.NotNil(t, svc.observation)
	assert.Equal(t, "schedule clash", *svc.observation)
}

func TestAssignmentHandlerDecisionOnOthersAssignmentIsNotFound(t *testing.T) {
	svc := &assignmentServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "assignment not found")}
	handler := NewAssignmentHandler(svc)
	teacher := models.TeacherActor("teacher-2")
	c, w := newActorContext(t, http.MethodPatch, "/assignments/assign-1/accept", nil, &teacher)
	c.Params = gin.Params{{Key: "id", Value: "assign-1"}}

	handler.Accept(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignmentHandlerListForTeacherByStatus(t *testing.T) {
	svc := &assignmentServiceMock{}
	handler := NewAssignmentHandler(svc)
	c, w := newActorContext(t, http.MethodGet, "/teachers/teacher-1/assignments?status=accepted", nil, sectionActor())
	c.Params = gin.Params{{Key: "id", Value: "teacher-1"}}

	handler.ListForTeacher(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AssignmentAccepted, svc.status)
	assert.Equal(t, "teacher-1", svc.teacherID)
}

func TestAssignmentHandlerListForTeacherCurrentFlag(t *testing.T) {
	svc := &assignmentServiceMock{}
	handler := NewAssignmentHandler(svc)

	c, w := newActorContext(t, http.MethodGet, "/teachers/teacher-1/assignments?current=true", nil, sectionActor())
	c.Params = gin.Params{{Key: "id", Value: "teacher-1"}}
	handler.ListForTeacher(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.currentOnly)

	c, w = newActorContext(t, http.MethodGet, "/teachers/teacher-1/assignments?current=maybe", nil, sectionActor())
	c.Params = gin.Params{{Key: "id", Value: "teacher-1"}}
	handler.ListForTeacher(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerDeleteByTeacherAndClass(t *testing.T) {
	svc := &assignmentServiceMock{}
	handler := NewAssignmentHandler(svc)
	c, _ := newActorContext(t, http.MethodDelete, "/teachers/teacher-1/classes/class-1", nil, sectionActor())
	c.Params = gin.Params{{Key: "id", Value: "teacher-1"}, {Key: "classId", Value: "class-1"}}

	handler.DeleteByTeacherAndClass(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "teacher-1", svc.teacherID)
	assert.Equal(t, "class-1", svc.classID)
}
