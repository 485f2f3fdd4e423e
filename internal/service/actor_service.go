package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

type sectionOwnerLookup interface {
	FindByOwner(ctx context.Context, userID string) (*models.Section, error)
}

type teacherUserLookup interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

// ActorService turns authenticated claims into the planning Actor they act as.
type ActorService struct {
	sections sectionOwnerLookup
	teachers teacherUserLookup
	logger   *zap.Logger
}

// NewActorService builds an ActorService.
func NewActorService(sections sectionOwnerLookup, teachers teacherUserLookup, logger *zap.Logger) *ActorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActorService{sections: sections, teachers: teachers, logger: logger}
}

// Resolve maps claims to an Actor. Section owners without a section and teachers without a
// teacher record are forbidden; other roles have no planning identity.
func (s *ActorService) Resolve(ctx context.Context, claims *models.JWTClaims) (models.Actor, error) {
	if claims == nil {
		return models.Actor{}, appErrors.ErrUnauthorized
	}

	switch claims.Role {
	case models.RoleAdmin:
		actor := models.AdminActor()
		actor.UserID = claims.UserID
		return actor, nil
	case models.RoleSection:
		section, err := s.sections.FindByOwner(ctx, claims.UserID)
		if err != nil {
			return models.Actor{}, s.lookupError(err, claims, "no section is owned by this user")
		}
		actor := models.SectionActor(section.ID)
		actor.UserID = claims.UserID
		return actor, nil
	case models.RoleTeacher:
		teacherID, err := s.TeacherIDForUser(ctx, claims.UserID)
		if err != nil {
			return models.Actor{}, err
		}
		actor := models.TeacherActor(teacherID)
		actor.UserID = claims.UserID
		return actor, nil
	default:
		return models.Actor{}, appErrors.Clone(appErrors.ErrForbidden, "role has no planning access")
	}
}

// TeacherIDForUser returns the teacher record linked to a user account.
func (s *ActorService) TeacherIDForUser(ctx context.Context, userID string) (string, error) {
	teacher, err := s.teachers.FindByUserID(ctx, userID)
	if err != nil {
		return "", s.lookupError(err, &models.JWTClaims{UserID: userID, Role: models.RoleTeacher}, "no teacher is linked to this user")
	}
	return teacher.ID, nil
}

func (s *ActorService) lookupError(err error, claims *models.JWTClaims, forbiddenMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrForbidden, forbiddenMsg)
	}
	s.logger.Error("failed to resolve actor", zap.String("user_id", claims.UserID), zap.String("role", string(claims.Role)), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve caller")
}
