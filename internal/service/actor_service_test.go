package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

type sectionOwnerStub struct {
	byOwner map[string]models.Section
}

func (s sectionOwnerStub) FindByOwner(ctx context.Context, userID string) (*models.Section, error) {
	section, ok := s.byOwner[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &section, nil
}

func TestActorServiceResolve(t *testing.T) {
	sections := sectionOwnerStub{byOwner: map[string]models.Section{"user-owner": {ID: "sec-1", OwnerUserID: "user-owner"}}}
	teachers := &teacherStub{items: map[string]models.Teacher{"teacher-5": {ID: "teacher-5", UserID: "user-teacher"}}}
	svc := NewActorService(sections, teachers, nil)
	ctx := context.Background()

	admin, err := svc.Resolve(ctx, &models.JWTClaims{UserID: "user-admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, "user-admin", admin.UserID)

	section, err := svc.Resolve(ctx, &models.JWTClaims{UserID: "user-owner", Role: models.RoleSection})
	require.NoError(t, err)
	assert.Equal(t, models.SectionActor("sec-1").SectionID, section.SectionID)
	assert.True(t, section.IsSection())

	teacher, err := svc.Resolve(ctx, &models.JWTClaims{UserID: "user-teacher", Role: models.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, "teacher-5", teacher.TeacherID)

	id, err := svc.TeacherIDForUser(ctx, "user-teacher")
	require.NoError(t, err)
	assert.Equal(t, "teacher-5", id)
}

func TestActorServiceRejectsUnlinkedUsers(t *testing.T) {
	svc := NewActorService(sectionOwnerStub{}, &teacherStub{}, nil)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, &models.JWTClaims{UserID: "user-x", Role: models.RoleSection})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))

	_, err = svc.Resolve(ctx, &models.JWTClaims{UserID: "user-x", Role: models.RoleTeacher})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))

	_, err = svc.Resolve(ctx, &models.JWTClaims{UserID: "user-x", Role: models.RoleStudent})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))

	_, err = svc.Resolve(ctx, nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}
